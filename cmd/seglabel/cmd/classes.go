package cmd

import (
	"fmt"
	"strconv"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/spf13/cobra"
)

// classesCmd groups the class list file commands.
var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Inspect and edit a JSON class list file",
	Long: `Inspect and edit a JSON class list file.

These commands edit the list only. Annotation files keep their numeric
class ids; use the labeling server to remove a class together with its
polygons.

Examples:
  seglabel classes list classes.json
  seglabel classes add classes.json cat dog
  seglabel classes remove classes.json dog`,
}

var classesListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "Print the classes with their ids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := annotation.LoadClassFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, n := range names {
			_, _ = fmt.Fprintf(out, "%d\t%s\n", i, n)
		}
		return nil
	},
}

var classesAddCmd = &cobra.Command{
	Use:   "add <file> <name>...",
	Short: "Append classes, creating the file if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		classes, err := loadClasses(args[0])
		if err != nil {
			return err
		}
		for _, name := range args[1:] {
			id, err := classes.Add(name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d\t%s\n", id, name)
		}
		return annotation.SaveClassFile(args[0], classes.Names())
	},
}

var classesRemoveCmd = &cobra.Command{
	Use:   "remove <file> <name|id>",
	Short: "Remove a class by name or id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := annotation.LoadClassFile(args[0])
		if err != nil {
			return err
		}
		classes, err := annotation.NewClassList(names...)
		if err != nil {
			return err
		}
		i := classes.Index(args[1])
		if i < 0 {
			if n, convErr := strconv.Atoi(args[1]); convErr == nil {
				i = n
			}
		}
		name, err := classes.Remove(i)
		if err != nil {
			return fmt.Errorf("unknown class %q: %w", args[1], err)
		}
		if err := annotation.SaveClassFile(args[0], classes.Names()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d\t%s\n", i, name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
	classesCmd.AddCommand(classesListCmd, classesAddCmd, classesRemoveCmd)
}
