package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pharmacy-copilot/pkg"
)

func newDispatchCmd(opts *rootOptions) *cobra.Command {
	var (
		sets    []string
		lists   []string
		noModel bool
	)
	cmd := &cobra.Command{
		Use:   "dispatch <task>",
		Short: "Run one task and print the result as JSON",
		Long: "Run one task and print the result as JSON.\n\nTasks: " +
			strings.Join(taskNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := pkg.TaskType(args[0])
			if !task.Valid() {
				return fmt.Errorf("unknown task %q (want one of %s)", args[0], strings.Join(taskNames(), ", "))
			}
			tctx, err := parseContext(sets, lists)
			if err != nil {
				return err
			}
			a, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			defer shutdown(a)

			router := a.Router
			if noModel {
				settings := router.Settings()
				settings.Enabled = false
				router = router.WithSettings(settings)
			}
			res, err := router.Dispatch(cmd.Context(), task, tctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "context field as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&lists, "list", nil, "list context field as key=a,b,c (repeatable)")
	cmd.Flags().BoolVar(&noModel, "no-llm", false, "skip model calls and print the fallback output")
	return cmd
}

// parseContext builds a task context from --set and --list flags.  Scalar
// values that look like integers or booleans are converted.
func parseContext(sets, lists []string) (pkg.TaskContext, error) {
	tctx := pkg.TaskContext{}
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		tctx[key] = scalar(value)
	}
	for _, kv := range lists {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --list %q, want key=a,b", kv)
		}
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		tctx[key] = items
	}
	return tctx, nil
}

func scalar(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func taskNames() []string {
	names := make([]string, 0, len(pkg.TaskTypes))
	for _, t := range pkg.TaskTypes {
		names = append(names, string(t))
	}
	return names
}
