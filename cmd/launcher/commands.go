package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/provide-io/flavor/go/launcher/pkg/overlay"
	"github.com/provide-io/flavor/go/launcher/pkg/request"
	"github.com/provide-io/flavor/go/launcher/pkg/task"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings (saved values plus overrides)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printRecord(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

func newSaveCmd(a *app) *cobra.Command {
	var debugFlag bool
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist the effective settings, including any overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("debug") {
				a.store.SetDebug(debugFlag)
			}
			a.store.Save()
			fmt.Fprintf(cmd.OutOrStdout(), "💾 Saved %s\n", a.store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "Persist the debug logging flag")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the settings to the defaults and save them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SetDefault(); err != nil {
				return err
			}
			a.store.Save()
			fmt.Fprintf(cmd.OutOrStdout(), "♻️ Reset %s\n", a.store.Path())
			return nil
		},
	}
}

func newSetRAMCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-ram <MiB>",
		Short: "Set the RAM amount, rounded down to 256 MiB and capped at the system limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid RAM amount %q: %w", args[0], err)
			}
			a.store.SetRAM(requested)
			a.store.Save()
			fmt.Fprintf(cmd.OutOrStdout(), "🧠 RAM set to %d MiB\n", a.store.Record().RAMMB)
			return nil
		},
	}
}

func newForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Forget the saved login and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.ClearCredentials()
			a.store.Save()
			fmt.Fprintln(cmd.OutOrStdout(), "🔒 Saved credentials removed")
			return nil
		},
	}
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the contents of the downloads directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.clean(cmd)
		},
	}
}

// clean runs the delete request behind the processing overlay on a
// presentation loop owned by the calling goroutine.
func (a *app) clean(cmd *cobra.Command) error {
	dir := a.store.Record().DownloadsDir
	out := cmd.OutOrStdout()

	loop := task.NewLoop(a.logger)
	orch := task.NewOrchestrator(loop, a.logger)
	machine := overlay.NewMachine(loop, overlay.NewTerminalPresenter(cmd.ErrOrStderr()), nil, a.logger)

	var failure error
	loop.Post(func() {
		overlay.Run(machine, orch, task.FromRequest[int](request.NewDeleteDir(dir, a.logger)),
			"🧹 Deleting downloads in "+dir,
			overlay.Options[int]{
				OnSuccess: func(removed int) {
					fmt.Fprintf(out, "🧹 Removed %d entries from %s\n", removed, dir)
					loop.Stop()
				},
				OnError:   func(err error) { failure = err },
				AutoHide:  true,
				HideDelay: a.cfg.HideDelay,
				OnHidden:  loop.Stop,
			})
	})

	if err := loop.Run(cmd.Context()); err != nil {
		return err
	}
	return failure
}

func printRecord(w io.Writer, a *app) {
	rec := a.store.Record()
	overrides := a.store.Overrides()

	login := "-"
	if rec.Login != nil {
		login = *rec.Login
	}
	password := "not saved"
	if rec.Credential != nil {
		password = fmt.Sprintf("saved (%d bytes encrypted)", len(rec.Credential))
	}
	ram := "auto"
	if rec.RAMMB > 0 {
		ram = fmt.Sprintf("%d MiB", rec.RAMMB)
	}

	fmt.Fprintf(w, "%-14s %s\n", "settings:", a.store.Path())
	fmt.Fprintf(w, "%-14s %s\n", "login:", login)
	fmt.Fprintf(w, "%-14s %s\n", "password:", password)
	fmt.Fprintf(w, "%-14s %d\n", "profile:", rec.ProfileIndex)
	fmt.Fprintf(w, "%-14s %s\n", "downloadsDir:", rec.DownloadsDir)
	fmt.Fprintf(w, "%-14s %t\n", "autoEnter:", rec.AutoEnter)
	fmt.Fprintf(w, "%-14s %t\n", "fullScreen:", rec.FullScreen)
	fmt.Fprintf(w, "%-14s %s (max %d MiB)\n", "ram:", ram, a.store.MaxRAMMB())
	fmt.Fprintf(w, "%-14s %t\n", "debug:", rec.DebugEnabled)
	fmt.Fprintf(w, "%-14s %t\n", "autoLogin:", overrides.AutoLogin)
	if !rec.PasswordSaved() {
		fmt.Fprintf(w, "%-14s %s\n", "", "⚠️ login saved without a password")
	}
}
