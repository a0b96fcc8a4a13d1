/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The prefs command inspects and edits the per-device preferences kept by
// the dashboard client: widget layout, theme, genres, D-Days and to-dos.
//
// Example usage:
//
//	moohub prefs show
//	moohub prefs widget toggle todo
//	moohub prefs widget move 0 3
//	moohub prefs theme light
//	moohub prefs genre music jazz
//	moohub prefs dday add "Launch" 2026-03-01
//	moohub prefs todo add "water the plants"
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/seckatie/moohub/internal/client/localstore"
	"github.com/spf13/cobra"
)

// prefsCmd represents the prefs command
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change local dashboard preferences",
}

// withPrefs opens the store named by --prefs-dir for the duration of fn.
func withPrefs(cmd *cobra.Command, fn func(*localstore.Store) (any, error)) error {
	dir, err := cmd.Flags().GetString("prefs-dir")
	if err != nil {
		return fmt.Errorf("failed to read --prefs-dir: %w", err)
	}
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to find config dir: %w", err)
		}
		dir = filepath.Join(base, "moohub", "prefs")
	}

	store, err := localstore.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := fn(store)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type prefsSnapshot struct {
	Theme        localstore.Theme          `json:"theme"`
	Dashboard    []localstore.WidgetConfig `json:"dashboard"`
	MusicGenre   string                    `json:"musicGenre"`
	YouTubeGenre string                    `json:"youtubeGenre"`
	DDays        []ddayView                `json:"ddays"`
	Todos        []localstore.Todo         `json:"todos"`
}

type ddayView struct {
	localstore.DDay
	Countdown string `json:"countdown"`
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every preference as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			dashboard, err := s.Dashboard()
			if err != nil {
				return nil, err
			}
			ddays, err := s.DDays()
			if err != nil {
				return nil, err
			}
			todos, err := s.Todos()
			if err != nil {
				return nil, err
			}
			snap := prefsSnapshot{
				Theme:        s.Theme(),
				Dashboard:    dashboard,
				MusicGenre:   s.MusicGenre().ID,
				YouTubeGenre: s.YouTubeGenre().ID,
				DDays:        []ddayView{},
				Todos:        todos,
			}
			now := time.Now()
			for _, d := range ddays {
				n, err := localstore.DaysUntil(d, now)
				if err != nil {
					return nil, err
				}
				snap.DDays = append(snap.DDays, ddayView{DDay: d, Countdown: localstore.FormatDDay(n)})
			}
			return snap, nil
		})
	},
}

var prefsThemeCmd = &cobra.Command{
	Use:   "theme [dark|light]",
	Short: "Set the theme, or toggle it when no value is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			if len(args) == 0 {
				return s.ToggleTheme()
			}
			t := localstore.Theme(args[0])
			return t, s.SetTheme(t)
		})
	},
}

var prefsWidgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Change the dashboard layout",
}

var prefsWidgetToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Show or hide a widget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.ToggleWidget(args[0])
		})
	},
}

var prefsWidgetMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move the widget at position from to position to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[0])
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.MoveWidget(from, to)
		})
	},
}

var prefsWidgetResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.ResetDashboard()
		})
	},
}

var prefsGenreCmd = &cobra.Command{
	Use:       "genre <music|youtube> <id>",
	Short:     "Select the music or video genre",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"music", "youtube"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			switch args[0] {
			case "music":
				return nil, s.SetMusicGenre(args[1])
			case "youtube":
				return nil, s.SetYouTubeGenre(args[1])
			default:
				return nil, fmt.Errorf("unknown genre list %q", args[0])
			}
		})
	},
}

var prefsDDayCmd = &cobra.Command{
	Use:   "dday",
	Short: "Manage D-Day countdowns",
}

var prefsDDayAddCmd = &cobra.Command{
	Use:   "add <label> <yyyy-mm-dd>",
	Short: "Add a countdown",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.AddDDay(args[0], args[1])
		})
	},
}

var prefsDDayRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a countdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return nil, s.RemoveDDay(args[0])
		})
	},
}

var prefsTodoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage the to-do list",
}

var prefsTodoAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.AddTodo(args[0])
		})
	},
}

var prefsTodoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle an item between done and open",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.ToggleTodo(args[0])
		})
	},
}

var prefsTodoRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return nil, s.RemoveTodo(args[0])
		})
	},
}

var prefsTodoClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every finished item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(cmd, func(s *localstore.Store) (any, error) {
			return s.ClearDone()
		})
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.PersistentFlags().String("prefs-dir", "", "Preferences directory (default <user config dir>/moohub/prefs)")

	prefsCmd.AddCommand(prefsShowCmd, prefsThemeCmd, prefsWidgetCmd, prefsGenreCmd, prefsDDayCmd, prefsTodoCmd)
	prefsWidgetCmd.AddCommand(prefsWidgetToggleCmd, prefsWidgetMoveCmd, prefsWidgetResetCmd)
	prefsDDayCmd.AddCommand(prefsDDayAddCmd, prefsDDayRemoveCmd)
	prefsTodoCmd.AddCommand(prefsTodoAddCmd, prefsTodoDoneCmd, prefsTodoRemoveCmd, prefsTodoClearCmd)
}
