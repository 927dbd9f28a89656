package convert

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Environment variables the converter requires.
const (
	EnvCCDBHome   = "CCDB_HOME"
	EnvCalibURL   = "JANA_CALIB_URL"
	EnvCalibRules = "JANA_CALIB_RULES"
)

// Converter walks an XML rules tree and emits one CLI command per
// directory, table definition and data file found. In rehearsal mode
// commands are printed; in execute mode they run through the CCDB CLI.
type Converter struct {
	// CCDBHome is the CCDB installation directory; <home>/bin/ccdb is
	// preferred over a bare "ccdb" from PATH.
	CCDBHome string

	// CalibDir is the root of the legacy calibration data tree.
	CalibDir string

	// RulesDir is the conversion rules directory; rule files live
	// under <rules>/xml.
	RulesDir string

	// Execute runs commands instead of printing them.
	Execute bool

	// Verbose prints per-column detail while scanning rules.
	Verbose bool

	Logger *slog.Logger

	// SessionID tags all log lines of one conversion run.
	SessionID string

	// run executes a single command line; replaceable in tests.
	run func(name string, args ...string) error
}

// FromEnv builds a Converter from the required environment variables.
func FromEnv(logger *slog.Logger) (*Converter, error) {
	home := os.Getenv(EnvCCDBHome)
	if home == "" {
		return nil, fmt.Errorf("%s must be set", EnvCCDBHome)
	}
	calibURL := os.Getenv(EnvCalibURL)
	if calibURL == "" {
		return nil, fmt.Errorf("%s must be set", EnvCalibURL)
	}
	rulesDir := os.Getenv(EnvCalibRules)
	if rulesDir == "" {
		return nil, fmt.Errorf("%s must be set", EnvCalibRules)
	}
	return New(home, strings.TrimPrefix(calibURL, "file://"), rulesDir, logger), nil
}

// New builds a Converter with explicit paths.
func New(ccdbHome, calibDir, rulesDir string, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Converter{
		CCDBHome:  ccdbHome,
		CalibDir:  calibDir,
		RulesDir:  rulesDir,
		Logger:    logger,
		SessionID: uuid.New().String(),
	}
	c.run = func(name string, args ...string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	return c
}

// cliPath resolves the CCDB CLI binary.
func (c *Converter) cliPath() string {
	if c.CCDBHome != "" {
		candidate := filepath.Join(c.CCDBHome, "bin", "ccdb")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "ccdb"
}

// rulesXMLDir is where the rule files actually live.
func (c *Converter) rulesXMLDir() string { return filepath.Join(c.RulesDir, "xml") }

// Run walks the rules tree and processes every directory and rule file.
func (c *Converter) Run() error {
	c.Logger.Info("starting conversion",
		"session", c.SessionID,
		"rules", c.rulesXMLDir(),
		"calib", c.CalibDir,
		"execute", c.Execute)
	return c.processDirectory(c.rulesXMLDir())
}

// processDirectory handles one rules directory: rule files first, then
// recursion into subdirectories, creating the matching CCDB directory
// for each. The .svn bookkeeping directories of the legacy tree are
// skipped.
func (c *Converter) processDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read rules directory %s: %w", dir, err)
	}

	parentPath := c.ccdbPathFor(dir)

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}
		if err := c.processRuleFile(filepath.Join(dir, e.Name()), parentPath); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if !e.IsDir() || e.Name() == ".svn" {
			continue
		}
		if err := c.dispatch(c.MkdirCommand(joinCCDBPath(parentPath, e.Name()))); err != nil {
			return err
		}
		if err := c.processDirectory(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// processRuleFile emits a mktbl and an add command per table rule.
func (c *Converter) processRuleFile(rulePath, ccdbParent string) error {
	rules, err := ParseRuleFile(rulePath)
	if err != nil {
		return err
	}
	c.Logger.Info("processing rule file", "session", c.SessionID, "file", rulePath, "tables", len(rules))

	for _, rule := range rules {
		if c.Verbose {
			for _, col := range rule.Columns {
				c.Logger.Debug("column", "name", col.Name, "type", col.Type)
			}
		}
		tablePath := joinCCDBPath(ccdbParent, rule.Name)
		if err := c.dispatch(c.MktblCommand(tablePath, rule)); err != nil {
			return err
		}

		dataFile := filepath.Join(c.CalibDir, filepath.FromSlash(strings.TrimPrefix(tablePath, "/")))
		if err := c.dispatch(c.AddCommand(tablePath, dataFile, rule.IsNameValue())); err != nil {
			return err
		}
	}
	return nil
}

// MkdirCommand builds the directory creation command line.
func (c *Converter) MkdirCommand(path string) []string {
	return []string{c.cliPath(), "mkdir", path}
}

// MktblCommand builds the table creation command line for a rule.
func (c *Converter) MktblCommand(tablePath string, rule TableRule) []string {
	args := []string{c.cliPath(), "mktbl", tablePath, "-r", fmt.Sprintf("%d", rule.Rows)}
	for _, col := range rule.Columns {
		args = append(args, fmt.Sprintf("%s(%s)", col.Name, col.Type))
	}
	if rule.Comment != "" {
		args = append(args, "-c", rule.Comment)
	}
	return args
}

// AddCommand builds the data loading command line.
func (c *Converter) AddCommand(tablePath, dataFile string, nameValue bool) []string {
	args := []string{c.cliPath(), "add"}
	if nameValue {
		args = append(args, "--name-value")
	}
	args = append(args, tablePath, "--variation", "default", "-r", "0-", dataFile)
	return args
}

// dispatch prints the command, and runs it in execute mode.
func (c *Converter) dispatch(argv []string) error {
	line := strings.Join(argv, " ")
	fmt.Println(line)
	if !c.Execute {
		return nil
	}
	if err := c.run(argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("command failed: %s: %w", line, err)
	}
	return nil
}

// ccdbPathFor maps a rules directory to its CCDB path.
func (c *Converter) ccdbPathFor(dir string) string {
	rel, err := filepath.Rel(c.rulesXMLDir(), dir)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

func joinCCDBPath(parent, name string) string {
	return strings.ReplaceAll(parent+"/"+name, "//", "/")
}
