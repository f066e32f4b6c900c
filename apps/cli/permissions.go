package main

import (
	"context"
	"fmt"

	"github.com/trezcool/challan/core/permission"
)

func (cli *commandLine) requestPermission(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("request-permission")
	reason := cmd.String("reason", "", "Why editing is needed.")
	minutes := cmd.Int("minutes", 30, "How long editing should stay unlocked (1 to 1440).")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if err := required("reason", *reason); err != nil {
		return err
	}
	ctx, err := cli.authenticate(ctx)
	if err != nil {
		return err
	}

	r, err := cli.perms.Create(ctx, permission.NewRequest{Reason: *reason, RequestedDuration: *minutes})
	if err != nil {
		return err
	}
	cli.notices.Success(fmt.Sprintf("Permission request %s sent (%s)", r.ID, r.Status))
	return nil
}
