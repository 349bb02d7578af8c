package config

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	defaultMasterLogFile = "OpenPassMaster.log"
	defaultSlaveCommand  = "OpenPassSlave"
	defaultLibrariesRoot = "lib"
)

// SlaveInvocation is one slave the master starts: its own log file and
// configs/results directories.
type SlaveInvocation struct {
	LogFile        string
	ConfigsPath    string
	ResultsPath    string
}

// FrameworkConfig is the master's own configuration: log level, its own
// log file, the slave binary or library name to invoke, the libraries
// root, and the sequence of slave invocations to run.
type FrameworkConfig struct {
	LogLevel      int
	MasterLogFile string
	SlaveCommand  string
	LibrariesRoot string
	Slaves        []SlaveInvocation
}

type frameworkConfigJSON struct {
	LogLevel      *int                  `json:"logLevel"`
	MasterLogFile string                `json:"masterLogFile"`
	SlaveCommand  string                `json:"slaveCommand"`
	LibrariesRoot string                `json:"librariesRoot"`
	Slaves        []slaveInvocationJSON `json:"slaves"`
}

type slaveInvocationJSON struct {
	LogFile     string `json:"logFile"`
	ConfigsPath string `json:"configurations"`
	ResultsPath string `json:"results"`
}

// LoadFrameworkConfig reads the master's framework configuration from r,
// applying the defaults spec.md §6 names for every omitted field. The log
// level is clamped to [0,5].
func LoadFrameworkConfig(r io.Reader) (*FrameworkConfig, error) {
	var payload frameworkConfigJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadFrameworkConfig: decode failed: %w", err)
	}

	result := &FrameworkConfig{
		MasterLogFile: defaultMasterLogFile,
		SlaveCommand:  defaultSlaveCommand,
		LibrariesRoot: defaultLibrariesRoot,
	}
	if payload.LogLevel != nil {
		result.LogLevel = clampLogLevel(*payload.LogLevel)
	}
	if payload.MasterLogFile != "" {
		result.MasterLogFile = payload.MasterLogFile
	}
	if payload.SlaveCommand != "" {
		result.SlaveCommand = payload.SlaveCommand
	}
	if payload.LibrariesRoot != "" {
		result.LibrariesRoot = payload.LibrariesRoot
	}

	result.Slaves = make([]SlaveInvocation, 0, len(payload.Slaves))
	for _, s := range payload.Slaves {
		result.Slaves = append(result.Slaves, SlaveInvocation{
			LogFile:     s.LogFile,
			ConfigsPath: s.ConfigsPath,
			ResultsPath: s.ResultsPath,
		})
	}

	return result, nil
}

func clampLogLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 5 {
		return 5
	}
	return level
}
