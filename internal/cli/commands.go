package cli

import (
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	runNameFlag    string
	runHostIDFlag  string
	runNoLockFlag  bool
	listJSONFlag   bool
	compareJSON    bool
	deleteForce    bool
	clearForce     bool
	serveAddrFlag  string
	doctorJSONFlag bool
	initForceFlag  bool
)

// runCmd executes the benchmark battery on this machine
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark battery on this host",
	Long: `Run the full benchmark battery: CPU, memory, disk, and network
probes, in that order. The result replaces this host's previous record in
the results file.

Probes that fail (missing tool, timeout, unparseable output) are skipped;
their metrics are simply absent from the record.

Examples:
  hostbench run
  hostbench run --name "rack 3 spare"
  hostbench run --host-id db-primary --db /mnt/shared/results.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(runNameFlag, runHostIDFlag, runNoLockFlag)
	},
}

// listCmd shows the stored results
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored benchmark results",
	Long: `List every host record in the results file with its identity and
when it last ran.

Examples:
  hostbench list
  hostbench list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCommand(listJSONFlag)
	},
}

// compareCmd ranks hosts per metric
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare hosts metric by metric",
	Long: `Render the cross-host comparison table: one row per metric, one
column per host, the best value in each row highlighted. Throughput
metrics favor bigger numbers; latency and DNS timing favor smaller.

Examples:
  hostbench compare
  hostbench compare --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return compareCommand(compareJSON)
	},
}

// deleteCmd removes one host's record
var deleteCmd = &cobra.Command{
	Use:   "delete <host-id>",
	Short: "Delete one host's result",
	Long: `Remove a single host record from the results file.

Examples:
  hostbench delete old-laptop
  hostbench delete old-laptop --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteCommand(args[0], deleteForce)
	},
}

// clearCmd removes every record
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored results",
	Long: `Remove every host record, leaving an empty results file behind.

Examples:
  hostbench clear
  hostbench clear --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearCommand(clearForce)
	},
}

// serveCmd starts the browser comparison view
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser comparison view",
	Long: `Start an HTTP server with the comparison table and a JSON API.
The page can kick off benchmark runs on this host and shows progress live.

Examples:
  hostbench serve
  hostbench serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(serveAddrFlag)
	},
}

// doctorCmd diagnoses the benchmark environment
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check measurement tools and configuration",
	Long: `Diagnose whether this machine can run the benchmark battery:
measurement tools on PATH, a writable results file, and working DNS.

Examples:
  hostbench doctor
  hostbench doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(doctorJSONFlag)
	},
}

// initCmd creates a new .hostbench.yaml
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .hostbench.yaml configuration",
	Long: `Initialize a configuration file in the current directory with
interactive prompts for the results file location and serve address.

Examples:
  hostbench init
  hostbench init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForceFlag)
	},
}

func init() {
	runCmd.Flags().StringVar(&runNameFlag, "name", "", "display name stored with this result")
	runCmd.Flags().StringVar(&runHostIDFlag, "host-id", "", "record key (defaults to the hostname)")
	runCmd.Flags().BoolVar(&runNoLockFlag, "no-lock", false, "skip the machine-wide run lock")

	listCmd.Flags().BoolVar(&listJSONFlag, "json", false, "output in JSON format")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output in JSON format")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "delete without confirmation")
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "clear without confirmation")
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (overrides serve.addr)")
	doctorCmd.Flags().BoolVar(&doctorJSONFlag, "json", false, "output in JSON format")
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite an existing config file")

	rootCmd.AddCommand(runCmd, listCmd, compareCmd, deleteCmd, clearCmd, serveCmd, doctorCmd, initCmd)
}
