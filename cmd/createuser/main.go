// Command createuser adds or updates a journal account.
//
//	createuser EMAIL PASSWORD
//	createuser -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/auth"
	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/db"
	"github.com/Tk21111/journal_board/internal/logx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "createuser:", err)
		os.Exit(1)
	}
}

func run() error {
	list := flag.Bool("list", false, "list accounts instead of creating one")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	if err := logx.Init(cfg.Env); err != nil {
		return err
	}
	defer logx.L.Sync()

	store, err := db.Open(cfg.DBPath, logx.L)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *list {
		return printUsers(ctx, store)
	}

	email := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	password := flag.Arg(1)
	if email == "" || password == "" {
		return errors.New(`usage: createuser "email" "password"`)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := store.UpsertUser(ctx, config.User{Email: email, PasswordHash: hash})
	if err != nil {
		return err
	}

	logx.L.Info("user ready", zap.String("id", u.ID), zap.String("email", u.Email))
	return printUsers(ctx, store)
}

func printUsers(ctx context.Context, store *db.DB) error {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Email", "Board name", "Created"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, u := range users {
		table.Append([]string{u.ID, u.Email, auth.DisplayName(u.Email), humanize.Time(u.CreatedAt)})
	}
	table.Render()
	return nil
}
