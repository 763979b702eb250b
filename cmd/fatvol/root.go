package main

import (
	"log/slog"

	"github.com/rstms/fatvol"
	"github.com/rstms/fatvol/hostfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "fatvol",
	Short: "operate on a directory tree through the fatvol volume layer",
	Long: `fatvol mounts a host directory as a volume and runs path
operations against it through the volume integration layer.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetBool("verbose"))
	},
}

func init() {
	cobra.EnableCommandSorting = false

	flags := rootCmd.PersistentFlags()
	flags.StringP("root", "r", ".", "host directory to mount as the volume")
	flags.BoolP("verbose", "v", false, "debug logging")

	viper.SetEnvPrefix("fatvol")
	viper.AutomaticEnv()
	viper.BindPFlag("root", flags.Lookup("root"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

// openVolume mounts the configured root directory and makes it the
// current working volume.
func openVolume() (*fatvol.Volume, error) {
	dir := viper.GetString("root")
	v := fatvol.New(hostfs.New(dir), nil)
	if err := v.Mount(nil); err != nil {
		return nil, Fatal(err)
	}
	if viper.GetBool("verbose") {
		v.SetLogger(slog.Default())
	}
	return v, nil
}
