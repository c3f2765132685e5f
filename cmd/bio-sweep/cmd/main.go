package cmd

import (
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"
)

const inputHelp = `
The input is a BED file (optionally gzipped) or a BAM file.  Regions must be
sorted by start position within each chromosome, and each chromosome must
appear in one contiguous run; the order of the chromosomes themselves does not
matter.`

func newCmdEvents() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "events",
		Short:    "Print the open and close events of the sweep, with overlap depths",
		Long:     "Print one line per region boundary, in sweep order." + inputHelp,
		ArgsName: "path",
	}
	var opts Opts
	addCommonFlags(cmd, &opts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return errors.Errorf("events takes one pathname argument, but got %v", argv)
		}
		return writeEvents(vcontext.Background(), argv[0], opts)
	})
	return cmd
}

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "merge",
		Short:    "Merge overlapping or touching regions",
		Long:     "Print the connected components of the input regions." + inputHelp,
		ArgsName: "path",
	}
	var opts Opts
	addCommonFlags(cmd, &opts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return errors.Errorf("merge takes one pathname argument, but got %v", argv)
		}
		return writeMerge(vcontext.Background(), argv[0], opts)
	})
	return cmd
}

func newCmdCoverage() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "coverage",
		Short:    "Print constant-depth coverage segments",
		Long:     "Print the maximal runs of positions covered by the same number of regions." + inputHelp,
		ArgsName: "path",
	}
	var opts Opts
	addCommonFlags(cmd, &opts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return errors.Errorf("coverage takes one pathname argument, but got %v", argv)
		}
		return writeCoverage(vcontext.Background(), argv[0], opts)
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute a checksum of the sweep events of a file.
The checksum is a JSON string with per-chromosome event counts, depths and hash sums`,
		ArgsName: "path",
	}
	var opts Opts
	addCommonFlags(cmd, &opts)
	hashName := cmd.Flags.String("hash", "seahash", "Event hash function, 'seahash', 'farm' or 'highway'")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return errors.Errorf("checksum takes one pathname argument, but got %v", argv)
		}
		return checksum(vcontext.Background(), argv[0], *hashName, opts)
	})
	return cmd
}

// HelpArgs rewrites a leading -help, -h or --help in args into the help
// subcommand.  grail.Init parses the global flags before Run sees them, and
// would otherwise answer a bare -help with only the global flag list.
func HelpArgs(args []string) []string {
	if len(args) < 2 {
		return args
	}
	switch args[1] {
	case "-help", "--help", "-h":
		return append([]string{args[0], "help"}, args[2:]...)
	}
	return args
}

// Run runs the bio-sweep command line and returns the process exit code.
func Run() int {
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	err := cmdline.ParseAndRun(
		&cmdline.Command{
			Name:     "bio-sweep",
			Short:    "Stream sorted genomic intervals as overlap events",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdEvents(),
				newCmdMerge(),
				newCmdCoverage(),
				newCmdChecksum(),
			},
		}, env, os.Args[1:])
	return cmdline.ExitCode(err, env.Stderr)
}
