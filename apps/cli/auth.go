package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/trezcool/challan/core/user"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("login")
	email := cmd.String("email", "", "The email of the account. The password will be prompted next.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		cmd.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return errHelp
	}

	usr, err := cli.store.Login(ctx, user.Credentials{Email: *email, Password: string(pwd)})
	if err != nil {
		return err
	}
	cli.notices.Success(fmt.Sprintf("Logged in as %s (%s)", usr.Name, usr.Role))
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.store.Logout(); err != nil {
		return err
	}
	cli.notices.Success("Logged out")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	if _, err := cli.authenticate(ctx); err != nil {
		return err
	}
	usr := cli.store.User()
	fmt.Fprintf(cli.out, "%s <%s>\n", usr.Name, usr.Email)
	fmt.Fprintf(cli.out, "role:   %s\n", usr.Role)
	if c := cli.store.Campus(); c.Name != "" {
		fmt.Fprintf(cli.out, "campus: %s\n", c.Name)
	}
	fmt.Fprintf(cli.out, "home:   %s\n", usr.HomePath())
	return nil
}
