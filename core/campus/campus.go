package campus

import (
	"context"
	"fmt"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/voucher"
)

var ErrNotFound = fmt.Errorf("campus %w", core.ErrNotFound)

type Campus struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	LogoURL string `json:"logo"`
}

// School is the challan header of the campus; blank values fall back to the configured school.
func (c Campus) School(conf core.SchoolConfig) voucher.School {
	s := voucher.School{Name: conf.Name, Address: conf.Address, Phone: conf.Phone, LogoURL: conf.LogoURL}
	if c.Name != "" {
		s.Name = c.Name
	}
	if c.Address != "" {
		s.Address = c.Address
	}
	if c.Phone != "" {
		s.Phone = c.Phone
	}
	if c.LogoURL != "" {
		s.LogoURL = c.LogoURL
	}
	return s
}

type (
	Repository interface {
		GetCampus(ctx context.Context, id string) (Campus, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id string) (Campus, error) {
	if core.CleanString(id) == "" {
		return Campus{}, ErrNotFound
	}
	return svc.repo.GetCampus(ctx, id)
}

// Directory resolves the challan header of a campus, falling back to the configured school
// when the campus is unknown or cannot be fetched.
type Directory struct {
	svc    *Service
	conf   core.SchoolConfig
	logger core.Logger
}

func NewDirectory(svc *Service, conf *core.Config, logger core.Logger) *Directory {
	return &Directory{svc: svc, conf: conf.School, logger: logger}
}

func (d *Directory) School(ctx context.Context, campusID string) voucher.School {
	if campusID == "" || d.svc == nil {
		return Campus{}.School(d.conf)
	}
	c, err := d.svc.Get(ctx, campusID)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("campus.Directory: using default school header", err, map[string]interface{}{"campusId": campusID})
		}
		return Campus{}.School(d.conf)
	}
	return c.School(d.conf)
}
