package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flpkit/flp"
	"github.com/flpkit/flp/codec"
	"github.com/flpkit/flp/defaults"
	"github.com/flpkit/flp/midiconv"
	"github.com/flpkit/flp/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output the project files. The directory and its parents are created if needed. By default, projects are placed in the current working directory.")
	target := flag.String("t", flp.V21_0_3.String(), "Version to write: "+flp.V20_9_2.String()+" or "+flp.V21_0_3.String()+".")
	config := flag.String("c", "", "YAML file with conversion options (ppqn, arrangement, filter, info).")
	tables := flag.String("d", "", "YAML file overriding the default parameter tables. By default, flp/defaults.yml in the user config directory is used if it exists.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	var opts midiconv.Options
	if *config != "" {
		b, err := os.ReadFile(*config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read config %v: %v\n", *config, err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(b, &opts); err != nil {
			fmt.Fprintf(os.Stderr, "could not parse config %v: %v\n", *config, err)
			os.Exit(1)
		}
	}
	enc := codec.Encoder{Version: flp.ParseVersion(*target)}
	if *tables != "" {
		b, err := os.ReadFile(*tables)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read tables %v: %v\n", *tables, err)
			os.Exit(1)
		}
		if enc.Tables, err = defaults.Load(b); err != nil {
			fmt.Fprintf(os.Stderr, "could not load tables %v: %v\n", *tables, err)
			os.Exit(1)
		}
	} else if t, ok, err := defaults.LoadUser(); err != nil {
		fmt.Fprintf(os.Stderr, "could not load user tables: %v\n", err)
		os.Exit(1)
	} else if ok {
		enc.Tables = t
	}
	process := func(filename string) error {
		song, err := midiconv.ReadFile(filename, opts)
		if err != nil {
			return err
		}
		b, err := enc.Encode(song)
		if err != nil {
			return err
		}
		dir := *directory
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		_, name := filepath.Split(filename)
		out := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+".flp")
		if err := os.WriteFile(out, b, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", out, err)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Converts Standard MIDI Files to project files.\nUsage: %s [flags] [file.mid ...]\n", os.Args[0])
	flag.PrintDefaults()
}
