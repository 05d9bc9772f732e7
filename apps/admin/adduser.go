package main

import (
	"context"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/user"
)

// addUser updates or creates a user.User, matched by email.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	usr := user.User{
		Name:  core.CleanString(name),
		Email: email,
		Role:  role,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrSvc.Save(context.Background(), usr)
	return err
}
