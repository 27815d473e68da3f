package process

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	"github.com/SandboxServers/MeridianConsole-sub006/internal/size"
	"github.com/spf13/viper"
)

// MaxConfigFileSize is the hard size bound on a ServerConfig file.
const MaxConfigFileSize = 1 * size.SizeMega

// MaxConfigNesting is the maximum JSON object/array nesting depth
// tolerated while parsing a ServerConfig file.
const MaxConfigNesting = 32

// ServerConfig is the immutable, file-loaded description of the child
// executable a supervisor wraps.
type ServerConfig struct {
	ExecutablePath string            `mapstructure:"executablePath" json:"executablePath"`
	Arguments      string            `mapstructure:"arguments" json:"arguments"`
	WorkingDir     string            `mapstructure:"workingDirectory" json:"workingDirectory"`
	Environment    map[string]string `mapstructure:"environmentVariables" json:"environmentVariables"`

	CaptureStdout bool `mapstructure:"captureStdout" json:"captureStdout"`
	CaptureStderr bool `mapstructure:"captureStderr" json:"captureStderr"`
	RedirectStdin bool `mapstructure:"redirectStdin" json:"redirectStdin"`

	AutoRestart         bool `mapstructure:"autoRestart" json:"autoRestart"`
	MaxRestartAttempts  int  `mapstructure:"maxRestartAttempts" json:"maxRestartAttempts"`
	RestartDelaySeconds int  `mapstructure:"restartDelaySeconds" json:"restartDelaySeconds"`

	CPULimitPercent int `mapstructure:"cpuLimitPercent" json:"cpuLimitPercent"`
	MemoryLimitMB   int `mapstructure:"memoryLimitMb" json:"memoryLimitMb"`

	GracefulShutdownTimeoutSeconds int `mapstructure:"gracefulShutdownTimeoutSeconds" json:"gracefulShutdownTimeoutSeconds"`
}

// LoadServerConfig reads and validates the ServerConfig at path, enforcing
// a size bound and a nesting-depth bound before handing the bytes to
// viper for decoding: a size-bounded read followed by structured decoding
// and validation.
func LoadServerConfig(path string) (*ServerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigReadFailed, "opening config file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigReadFailed, "stat config file", err)
	}
	if info.Size() > MaxConfigFileSize.Int64() {
		return nil, apperr.New(apperr.ConfigTooLarge, fmt.Sprintf("config file exceeds %s limit", MaxConfigFileSize))
	}

	raw, err := io.ReadAll(io.LimitReader(f, MaxConfigFileSize.Int64()+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigReadFailed, "reading config file", err)
	}
	if int64(len(raw)) > MaxConfigFileSize.Int64() {
		return nil, apperr.New(apperr.ConfigTooLarge, fmt.Sprintf("config file exceeds %s limit", MaxConfigFileSize))
	}

	if depth, err := jsonMaxDepth(raw); err != nil {
		return nil, apperr.Wrap(apperr.ConfigDecodeFailed, "scanning config nesting", err)
	} else if depth > MaxConfigNesting {
		return nil, apperr.New(apperr.ConfigNestingTooDeep, fmt.Sprintf("config nesting depth %d exceeds limit %d", depth, MaxConfigNesting))
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, apperr.Wrap(apperr.ConfigDecodeFailed, "parsing config as JSON", err)
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Wrap(apperr.ConfigDecodeFailed, "decoding config into ServerConfig", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// jsonMaxDepth returns the deepest object/array nesting level present in
// raw, without fully decoding it into a tree - a streaming token scan so
// an attacker-sized deeply-nested document cannot exhaust memory before
// the depth check rejects it.
func jsonMaxDepth(raw []byte) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	depth, maxDepth := 0, 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}

		switch tok.(type) {
		case json.Delim:
			d := tok.(json.Delim)
			switch d {
			case '{', '[':
				depth++
				if depth > maxDepth {
					maxDepth = depth
				}
			case '}', ']':
				depth--
			}
		}
	}

	return maxDepth, nil
}

// Validate checks every field-level invariant the config format requires.
// All violations are concatenated into a single apperr.ConfigInvalid
// error, used as the exit reason when validation fails.
func (c *ServerConfig) Validate() error {
	var problems []string

	if c.ExecutablePath == "" {
		problems = append(problems, "executablePath is required")
	} else {
		if !filepath.IsAbs(c.ExecutablePath) {
			problems = append(problems, "executablePath must be absolute")
		}
		if clean := filepath.Clean(c.ExecutablePath); clean != c.ExecutablePath {
			problems = append(problems, "executablePath must canonicalize to itself (no traversal)")
		}
		if info, err := os.Stat(c.ExecutablePath); err != nil {
			problems = append(problems, fmt.Sprintf("executablePath does not exist: %v", err))
		} else if !info.Mode().IsRegular() {
			problems = append(problems, "executablePath must refer to a regular file")
		} else if !isAllowedExecutableKind(c.ExecutablePath, info) {
			problems = append(problems, "executablePath is not an allowed executable kind")
		}
	}

	if c.MaxRestartAttempts < 0 {
		problems = append(problems, "maxRestartAttempts must be >= 0")
	}
	if c.AutoRestart && c.RestartDelaySeconds < 1 {
		problems = append(problems, "restartDelaySeconds must be >= 1")
	}
	if c.CPULimitPercent < 0 || c.CPULimitPercent > 100 {
		problems = append(problems, "cpuLimitPercent must be within 0..100")
	}
	if c.MemoryLimitMB < 0 {
		problems = append(problems, "memoryLimitMb must be >= 0")
	}
	if c.GracefulShutdownTimeoutSeconds < 1 {
		problems = append(problems, "gracefulShutdownTimeoutSeconds must be >= 1")
	}

	if len(problems) > 0 {
		return apperr.New(apperr.ConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// EffectiveWorkingDir resolves the working directory default: the
// executable's own directory when WorkingDir is unset, else the
// configured value.
func (c *ServerConfig) EffectiveWorkingDir() string {
	if c.WorkingDir != "" {
		return c.WorkingDir
	}
	return filepath.Dir(c.ExecutablePath)
}
