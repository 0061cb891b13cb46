/*
Copyright © 2019 the STDA authors.
This file is part of STDA.

STDA is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

STDA is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with STDA.  If not, see <http://www.gnu.org/licenses/>.
*/


package stdautil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/metdig/stda"
	"github.com/metdig/stda/rain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress messages.
var Log logrus.FieldLogger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to STDA.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "registry",
			usage: `
              registry is the path to a TOML file holding the variable
              and unit table. If empty, the built-in table is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "cache.dir",
			usage: `
              cache.dir is the directory under which cached data is
              kept in a "cache" sub-directory. If empty, ~/.metdig is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "output",
			usage: `
              output is the path of the file to write.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets: []*pflag.FlagSet{convertCmd.Flags(), plotCmd.PersistentFlags(),
				seriesCmd.Flags(), deriveCmd.Flags(), rainCmd.Flags()},
		},
		{
			name: "var",
			usage: `
              var is the variable name. For convert it selects the variable
              to read from the input file; for derive and rain it names
              the result; for cachepath it names the cached variable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), deriveCmd.Flags(), rainCmd.Flags(), cachePathCmd.Flags()},
		},
		{
			name: "dims",
			usage: `
              dims maps canonical dimension names (member, level, time,
              dtime, lat, lon) to the dimension names used in the input
              file, for example {"lat":"latitude","lon":"longitude"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "units",
			usage: `
              units are the units of the input data. If empty, the units
              attribute of the input variable is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), deriveCmd.Flags()},
		},
		{
			name: "attrs",
			usage: `
              attrs are extra attributes to record on the output, for
              example {"data_source":"cassandra","data_name":"ecmwf"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), deriveCmd.Flags()},
		},
		{
			name: "member",
			usage: `
              member overrides the member coordinate of the output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "xdim",
			usage: `
              xdim is the dimension drawn along the horizontal axis. It may
              be any canonical dimension or fcst_time.`,
			defaultVal: "lon",
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags()},
		},
		{
			name: "ydim",
			usage: `
              ydim is the dimension drawn along the vertical axis.`,
			defaultVal: "lat",
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags()},
		},
		{
			name: "cmap",
			usage: `
              cmap is the name of the color map.`,
			defaultVal: "jet",
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags()},
		},
		{
			name: "levels",
			usage: `
              levels are the contour or shading levels. If empty, ten
              levels spanning the data are used.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags()},
		},
		{
			name: "title",
			usage: `
              title is the plot title. If empty, the grid description is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags(), seriesCmd.Flags()},
		},
		{
			name: "label",
			usage: `
              label is the color bar label. If empty, it is built from the
              variable display name and units.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags()},
		},
		{
			name: "highcut",
			usage: `
              highcut is the data quantile (0 to 1) above which pcolormesh
              uses a second color scale. 0 disables it.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags()},
		},
		{
			name: "width",
			usage: `
              width is the image width in inches.`,
			defaultVal: 8.0,
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags(), seriesCmd.Flags()},
		},
		{
			name: "height",
			usage: `
              height is the image height in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags(), seriesCmd.Flags()},
		},
		{
			name: "open",
			usage: `
              open opens the image in the default viewer once it is written.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.PersistentFlags(), seriesCmd.Flags()},
		},
		{
			name: "lon",
			usage: `
              lon is the longitude of the point to extract.`,
			defaultVal: 116.4,
			flagsets:   []*pflag.FlagSet{seriesCmd.Flags()},
		},
		{
			name: "lat",
			usage: `
              lat is the latitude of the point to extract.`,
			defaultVal: 39.9,
			flagsets:   []*pflag.FlagSet{seriesCmd.Flags()},
		},
		{
			name: "expr",
			usage: `
              expr is the expression to evaluate, for example
              "sqrt(u10m**2 + v10m**2)". Its variables are bound to input
              files given as name=path arguments.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{deriveCmd.Flags()},
		},
		{
			name: "data_source",
			usage: `
              data_source is the data source of the cached model output.`,
			defaultVal: "cassandra",
			flagsets:   []*pflag.FlagSet{rainCmd.Flags()},
		},
		{
			name: "data_name",
			usage: `
              data_name is the model name of the cached model output.`,
			defaultVal: "ecmwf",
			flagsets:   []*pflag.FlagSet{rainCmd.Flags()},
		},
		{
			name: "init",
			usage: `
              init is the initialization time of the model run, for example
              "2021-06-01 08:00" or "2021060108".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{rainCmd.Flags(), cachePathCmd.Flags()},
		},
		{
			name: "fhour",
			usage: `
              fhour is the forecast lead time in hours.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{rainCmd.Flags()},
		},
		{
			name: "atime",
			usage: `
              atime is the accumulation period in hours.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{rainCmd.Flags()},
		},
		{
			name: "level",
			usage: `
              level is the vertical level. 0 means a surface field.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{rainCmd.Flags(), cachePathCmd.Flags()},
		},
		{
			name: "workers",
			usage: `
              workers is the number of concurrent reads from the cache.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{rainCmd.Flags()},
		},
		{
			name: "extent",
			usage: `
              extent is the requested area as lon0,lon1,lat0,lat1.`,
			defaultVal: []string{"70", "140", "15", "55"},
			flagsets:   []*pflag.FlagSet{cachePathCmd.Flags()},
		},
		{
			name: "find_area",
			usage: `
              find_area allows any cached file whose area contains the
              requested extent to be used.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cachePathCmd.Flags()},
		},
		{
			name: "web.address",
			usage: `
              web.address is the address the web server listens on.`,
			defaultVal: "localhost:7171",
			flagsets:   []*pflag.FlagSet{webCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("STDA")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				set.String(option.name, string(b.Bytes()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(varsCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(plotCmd)
	plotCmd.AddCommand(pcolormeshCmd)
	plotCmd.AddCommand(contourfCmd)
	plotCmd.AddCommand(contourCmd)
	Root.AddCommand(seriesCmd)
	Root.AddCommand(deriveCmd)
	Root.AddCommand(rainCmd)
	Root.AddCommand(cachePathCmd)
	Root.AddCommand(webCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("stda: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "stda",
	Short: "Tools for canonical six-dimensional meteorological grids.",
	Long: `stda converts gridded meteorological data into the canonical
(member, level, time, dtime, lat, lon) layout and works with the result:
it describes, plots, derives and accumulates canonical grids.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'STDA_var' where 'var' is the
name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of STDA.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "STDA v%s\n", stda.Version)
	},
	DisableAutoGenTag: true,
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List known variables",
	Long: `vars lists the variables in the registry with their display names
and canonical units.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		return Vars(cmd.OutOrStdout(), reg)
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert input.nc",
	Short: "Convert a netCDF variable to a canonical grid",
	Long: `convert reads the variable named by --var from a netCDF file, maps
its dimensions to the canonical ones using --dims, converts it to the
canonical units of the variable and writes the canonical grid to --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		dims, err := dimMap(GetStringMapString("dims", Cfg))
		if err != nil {
			return err
		}
		opts := stda.Options{
			Dims:    dims,
			Units:   Cfg.GetString("units"),
			VarName: Cfg.GetString("var"),
			Attrs:   attrs(GetStringMapString("attrs", Cfg)),
		}
		if m := Cfg.GetString("member"); m != "" {
			opts.Coords[stda.Member] = stda.Labels(m)
		}
		output, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Convert(reg, args[0], output, opts)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info file.nc",
	Short: "Describe a canonical grid",
	Long: `info prints the description, shape, attributes and summary
statistics of a canonical grid file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		return Info(cmd.OutOrStdout(), reg, args[0])
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Draw a canonical grid",
	Long: `plot draws a two-dimensional slice of a canonical grid to a PNG
image. Use the subcommands specified below to choose the kind of plot.`,
	DisableAutoGenTag: true,
}

func plotRunE(kind string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		opts, err := plotOptions(Cfg)
		if err != nil {
			return err
		}
		output, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Plot(reg, kind, args[0], output, opts, Cfg.GetFloat64("width"),
			Cfg.GetFloat64("height"), Cfg.GetBool("open"))
	}
}

var pcolormeshCmd = &cobra.Command{
	Use:               "pcolormesh file.nc",
	Short:             "Draw a color mesh",
	Args:              cobra.ExactArgs(1),
	RunE:              plotRunE("pcolormesh"),
	DisableAutoGenTag: true,
}

var contourfCmd = &cobra.Command{
	Use:               "contourf file.nc",
	Short:             "Draw filled contours",
	Args:              cobra.ExactArgs(1),
	RunE:              plotRunE("contourf"),
	DisableAutoGenTag: true,
}

var contourCmd = &cobra.Command{
	Use:               "contour file.nc",
	Short:             "Draw contour lines",
	Args:              cobra.ExactArgs(1),
	RunE:              plotRunE("contour"),
	DisableAutoGenTag: true,
}

var seriesCmd = &cobra.Command{
	Use:   "series file.nc...",
	Short: "Export point time series",
	Long: `series extracts the time series at the grid point nearest to
--lon and --lat from each canonical grid file and writes them to
--output, which may be an .xlsx workbook or a .png plot.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		output, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Series(reg, args, output, Cfg.GetFloat64("lon"), Cfg.GetFloat64("lat"),
			Cfg.GetString("title"), Cfg.GetFloat64("width"), Cfg.GetFloat64("height"), Cfg.GetBool("open"))
	},
	DisableAutoGenTag: true,
}

var deriveCmd = &cobra.Command{
	Use:   "derive name=file.nc...",
	Short: "Evaluate an expression over canonical grids",
	Long: `derive evaluates --expr element by element over canonical grid
files of the same shape and writes the result, named by --var, to --output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		inputs, err := parseInputs(args)
		if err != nil {
			return err
		}
		output, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		extra := attrs(GetStringMapString("attrs", Cfg))
		if u := Cfg.GetString("units"); u != "" {
			extra[stda.VarUnits] = u
		}
		return Derive(reg, Cfg.GetString("expr"), Cfg.GetString("var"), inputs, output, extra)
	},
	DisableAutoGenTag: true,
}

var rainCmd = &cobra.Command{
	Use:   "rain",
	Short: "Derive accumulated precipitation",
	Long: `rain derives the precipitation accumulated over --atime hours
ending at --fhour from the cached model output, trying the accumulated
field itself, then the difference of total precipitation, then the sum
of hourly fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(Cfg.GetString("registry"))
		if err != nil {
			return err
		}
		init, err := parseTime(Cfg.GetString("init"))
		if err != nil {
			return err
		}
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		output, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		req := rain.Request{
			DataSource: Cfg.GetString("data_source"),
			DataName:   Cfg.GetString("data_name"),
			Init:       init,
			Fhour:      Cfg.GetInt("fhour"),
			Level:      Cfg.GetFloat64("level"),
		}
		return Rain(context.Background(), reg, dir, req, Cfg.GetInt("atime"), Cfg.GetInt("workers"), output)
	},
	DisableAutoGenTag: true,
}

var cachePathCmd = &cobra.Command{
	Use:   "cachepath",
	Short: "Find a cached ERA5 file",
	Long: `cachepath prints the path of the cached ERA5 file for --var at
--init and --level covering --extent, and whether it exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		init, err := parseTime(Cfg.GetString("init"))
		if err != nil {
			return err
		}
		extent, err := parseExtent(Cfg.Get("extent"))
		if err != nil {
			return err
		}
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		return CachePath(cmd.OutOrStdout(), dir, init, Cfg.GetString("var"), extent,
			Cfg.GetFloat64("level"), Cfg.GetBool("find_area"))
	},
	DisableAutoGenTag: true,
}
