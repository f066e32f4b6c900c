package restapi

import (
	"context"

	"github.com/trezcool/challan/core/dashboard"
	"github.com/trezcool/challan/core/report"
	"github.com/trezcool/challan/core/student"
)

type dashboardRepository struct {
	c *Client
}

func NewDashboardRepository(c *Client) dashboard.Repository {
	return &dashboardRepository{c: c}
}

func (repo *dashboardRepository) GetDashboardStats(ctx context.Context) (dashboard.Stats, error) {
	var stats dashboard.Stats
	err := repo.c.get(ctx, "/dashboard/stats", nil, &stats)
	return stats, err
}

type reportRepository struct {
	c *Client
}

func NewReportRepository(c *Client) report.Repository {
	return &reportRepository{c: c}
}

func (repo *reportRepository) QueryStudentReport(ctx context.Context) ([]student.Student, error) {
	var students []student.Student
	err := repo.c.get(ctx, "/reports/students", nil, &students)
	return students, err
}
