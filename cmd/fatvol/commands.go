package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rstms/fatvol"
	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"
)

var (
	lsLong    bool
	lsRecurse bool
	mkdirP    bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "list a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		var flags fatvol.LS
		if lsLong {
			flags |= fatvol.LSDate | fatvol.LSSize
		}
		if lsRecurse {
			flags |= fatvol.LSRecurse
		}
		if len(args) == 1 {
			return v.LsPath(os.Stdout, args[0], flags)
		}
		return v.Ls(os.Stdout, flags)
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		return v.Mkdir(args[0], mkdirP)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "remove a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		return v.Remove(args[0])
	},
}

var rmdirCmd = &cobra.Command{
	Use:   "rmdir PATH",
	Short: "remove an empty directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		return v.Rmdir(args[0])
	},
}

var rmrCmd = &cobra.Command{
	Use:   "rmr PATH",
	Short: "recursively delete a directory and its contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		if err := v.Chdir(args[0]); err != nil {
			return err
		}
		return v.RemoveAll()
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv OLD NEW",
	Short: "rename a file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		return v.Rename(args[0], args[1])
	},
}

var truncateCmd = &cobra.Command{
	Use:   "truncate PATH SIZE",
	Short: "truncate a file to SIZE bytes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		size, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return Fatalf("invalid size %q", args[1])
		}
		return v.Truncate(args[0], size)
	},
}

var existsCmd = &cobra.Command{
	Use:   "exists PATH",
	Short: "report whether an entry exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		if !v.Exists(args[0]) {
			fmt.Println("false")
			return Fatalf("%s: not found", args[0])
		}
		fmt.Println("true")
		return nil
	},
}

var sumCmd = &cobra.Command{
	Use:   "sum PATH",
	Short: "print the blake3 hash of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVolume()
		if err != nil {
			return err
		}
		f, err := v.Open(args[0], fatvol.ModeRead)
		if err != nil {
			return err
		}
		defer f.Close()
		hasher := blake3.New()
		if _, err := io.Copy(hasher, f); err != nil {
			return Fatal(err)
		}
		fmt.Printf("%x  %s\n", hasher.Sum(nil), args[0])
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "show date and size")
	lsCmd.Flags().BoolVarP(&lsRecurse, "recursive", "R", false, "recurse into subdirectories")
	mkdirCmd.Flags().BoolVarP(&mkdirP, "parents", "p", false, "create missing parent directories")

	rootCmd.AddCommand(lsCmd, mkdirCmd, rmCmd, rmdirCmd, rmrCmd, mvCmd, truncateCmd, existsCmd, sumCmd)
}
