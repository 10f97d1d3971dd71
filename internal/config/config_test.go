package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/ledcycle/internal/led"
	"github.com/spf13/cobra"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledcycle.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func defaultOptions(path string) *Options {
	opts := DefaultOptions()
	opts.Config = path
	return opts
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	want := Options{
		Config:             "ledcycle.toml",
		EngineStepInterval: "80ms",
		EngineHoldInterval: "9001ms",
		EngineInitialLevel: 255,
		OutputBackend:      "auto",
		OutputLeds:         "red,green,blue",
		OutputPwmChannels:  "0,1,2",
		OutputPwmPeriodNs:  1000000,
		Port:               ":8091",
		ServerEnabled:      true,
		LoggingLevel:       "info",
		LoggingFormat:      "text",
	}
	if *opts != want {
		t.Errorf("DefaultOptions() = %+v\nwant %+v", *opts, want)
	}
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[engine]
step_interval = "10ms"
hold_interval = "2s"
initial_level = 0

[output]
backend = "pwm"
pwm_chip = 2
pwm_channels = [0, 1]
inverted = true

[server]
port = ":9100"
enabled = false

[logging]
level = "debug"
engine = "warn"
`)

	opts := defaultOptions(path)
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.EngineStepInterval != "10ms" || opts.EngineHoldInterval != "2s" {
		t.Errorf("intervals = %q/%q, want 10ms/2s", opts.EngineStepInterval, opts.EngineHoldInterval)
	}
	if opts.EngineInitialLevel != 0 {
		t.Errorf("EngineInitialLevel = %d, want 0", opts.EngineInitialLevel)
	}
	if opts.OutputBackend != "pwm" || opts.OutputPwmChip != 2 || !opts.OutputInverted {
		t.Errorf("output = %q chip %d inverted %v", opts.OutputBackend, opts.OutputPwmChip, opts.OutputInverted)
	}
	if opts.OutputPwmChannels != "0,1" {
		t.Errorf("OutputPwmChannels = %q, want TOML array joined as 0,1", opts.OutputPwmChannels)
	}
	if opts.Port != ":9100" || opts.ServerEnabled {
		t.Errorf("server = %q enabled %v", opts.Port, opts.ServerEnabled)
	}
	if opts.LoggingLevel != "debug" || opts.LoggingEngine != "warn" {
		t.Errorf("logging = %q engine %q", opts.LoggingLevel, opts.LoggingEngine)
	}
	// Untouched keys keep their defaults.
	if opts.OutputLeds != "red,green,blue" {
		t.Errorf("OutputLeds = %q, want default", opts.OutputLeds)
	}
}

func TestLoadConfigTOMLStringArray(t *testing.T) {
	path := writeConfig(t, "[output]\nleds = [\"status:r\", \"status:g\"]\n")

	opts := defaultOptions(path)
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.OutputLeds != "status:r,status:g" {
		t.Errorf("OutputLeds = %q", opts.OutputLeds)
	}
}

func TestLoadConfigEnvOverridesTOML(t *testing.T) {
	path := writeConfig(t, "[engine]\nhold_interval = \"2s\"\nstep_interval = \"5ms\"\n")
	t.Setenv("LEDCYCLE_ENGINE_HOLD_INTERVAL", "3s")
	t.Setenv("LEDCYCLE_OUTPUT_INVERTED", "true")
	t.Setenv("LEDCYCLE_ENGINE_INITIAL_LEVEL", "12")

	opts := defaultOptions(path)
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.EngineHoldInterval != "3s" {
		t.Errorf("EngineHoldInterval = %q, want env value 3s", opts.EngineHoldInterval)
	}
	if opts.EngineStepInterval != "5ms" {
		t.Errorf("EngineStepInterval = %q, want TOML value 5ms", opts.EngineStepInterval)
	}
	if !opts.OutputInverted {
		t.Error("OutputInverted = false, want env value true")
	}
	if opts.EngineInitialLevel != 12 {
		t.Errorf("EngineInitialLevel = %d, want 12", opts.EngineInitialLevel)
	}
}

func TestLoadConfigFlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, "[server]\nport = \":9100\"\n[output]\nbackend = \"pwm\"\n")
	t.Setenv("LEDCYCLE_PORT", ":9200")

	cmd := &cobra.Command{Use: "ledcycle"}
	cmd.Flags().String("port", ":8091", "")
	cmd.Flags().String("output-backend", "auto", "")
	if err := cmd.Flags().Set("port", ":9300"); err != nil {
		t.Fatal(err)
	}

	opts := defaultOptions(path)
	opts.Port = ":9300"
	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.Port != ":9300" {
		t.Errorf("Port = %q, want flag value :9300", opts.Port)
	}
	if opts.OutputBackend != "pwm" {
		t.Errorf("OutputBackend = %q, want TOML value for unchanged flag", opts.OutputBackend)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := defaultOptions(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig should not fail for missing file: %v", err)
	}
	if opts.OutputBackend != "auto" {
		t.Errorf("OutputBackend = %q, want default", opts.OutputBackend)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[engine\ninvalid toml syntax\n")
	if err := LoadConfig(defaultOptions(path), nil); err == nil {
		t.Fatal("LoadConfig should fail with invalid TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":               "port",
		"LoggingLevel":       "logging-level",
		"EngineStepInterval": "engine-step-interval",
		"OutputPwmPeriodNs":  "output-pwm-period-ns",
		"LoggingAPI":         "logging-api",
		"OutputPWMChip":      "output-pwm-chip",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"engine": map[string]any{
			"timing": map[string]any{"step": "80ms"},
			"hold":   "9001ms",
		},
		"root": "value",
	}

	tests := []struct {
		path     string
		expected any
	}{
		{"root", "value"},
		{"engine.hold", "9001ms"},
		{"engine.timing.step", "80ms"},
		{"missing", nil},
		{"engine.missing", nil},
		{"root.child", nil},
	}

	for _, test := range tests {
		if result := getNestedValue(data, test.path); result != test.expected {
			t.Errorf("getNestedValue(%q) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestSetFieldValue(t *testing.T) {
	type target struct {
		Name   string
		Joined string
		On     bool
		Count  int
		Names  []string
	}

	s := &target{}
	v := reflect.ValueOf(s).Elem()

	for field, value := range map[string]any{
		"Name":   "red",
		"Joined": []any{int64(0), int64(1), int64(2)},
		"On":     true,
		"Count":  int64(42),
		"Names":  []any{"a", "b"},
	} {
		if err := setFieldValue(v.FieldByName(field), "test."+field, value); err != nil {
			t.Errorf("setFieldValue(%s) error = %v", field, err)
		}
	}

	want := target{Name: "red", Joined: "0,1,2", On: true, Count: 42, Names: []string{"a", "b"}}
	if !reflect.DeepEqual(*s, want) {
		t.Errorf("got %+v, want %+v", *s, want)
	}
}

func TestSetFieldValueWrongType(t *testing.T) {
	type target struct {
		Name  string
		On    bool
		Count int
		Names []string
	}

	tests := []struct {
		field string
		value any
	}{
		{"Count", "not a number"},
		{"Count", 2.5},
		{"Name", int64(2000)},
		{"On", "yes"},
		{"Names", "a,b"},
	}
	for _, tt := range tests {
		s := &target{Count: 7}
		err := setFieldValue(reflect.ValueOf(s).Elem().FieldByName(tt.field), "test.key", tt.value)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("setFieldValue(%s, %v) error = %v, want ErrInvalidOption", tt.field, tt.value, err)
		}
		if s.Count != 7 {
			t.Errorf("Count = %d after rejected value", s.Count)
		}
	}
}

func TestSetFieldValueFromString(t *testing.T) {
	type target struct {
		Name  string
		On    bool
		Count int
		Names []string
	}

	s := &target{}
	v := reflect.ValueOf(s).Elem()

	for field, value := range map[string]string{
		"Name":  "green",
		"On":    "true",
		"Count": "123",
		"Names": " x , y ",
	} {
		if err := setFieldValueFromString(v.FieldByName(field), "TEST_"+field, value); err != nil {
			t.Errorf("setFieldValueFromString(%s) error = %v", field, err)
		}
	}

	want := target{Name: "green", On: true, Count: 123, Names: []string{"x", "y"}}
	if !reflect.DeepEqual(*s, want) {
		t.Errorf("got %+v, want %+v", *s, want)
	}

	if err := setFieldValueFromString(v.FieldByName("Count"), "TEST_COUNT", "abc"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("unparsable int error = %v, want ErrInvalidOption", err)
	}
	if err := setFieldValueFromString(v.FieldByName("On"), "TEST_ON", "maybe"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("unparsable bool error = %v, want ErrInvalidOption", err)
	}
	if s.Count != 123 || !s.On {
		t.Errorf("rejected values changed the target: %+v", *s)
	}
}

func TestLoadConfigRejectsWrongTypes(t *testing.T) {
	tests := map[string]string{
		"integer interval": "[engine]\nhold_interval = 2000\n",
		"string level":     "[engine]\ninitial_level = \"zero\"\n",
		"string bool":      "[output]\ninverted = \"yes\"\n",
		"float chip":       "[output]\npwm_chip = 1.5\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			err := LoadConfig(defaultOptions(writeConfig(t, content)), nil)
			if !errors.Is(err, ErrInvalidOption) {
				t.Errorf("LoadConfig() error = %v, want ErrInvalidOption", err)
			}
		})
	}
}

func TestLoadConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("LEDCYCLE_ENGINE_INITIAL_LEVEL", "abc")

	err := LoadConfig(defaultOptions(filepath.Join(t.TempDir(), "none.toml")), nil)
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("LoadConfig() error = %v, want ErrInvalidOption", err)
	}
	if !strings.Contains(err.Error(), "LEDCYCLE_ENGINE_INITIAL_LEVEL") {
		t.Errorf("error %q should name the variable", err)
	}
}

func TestLoggingLoader(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
engine = "debug"
api = "error"
`)

	cfg, err := LoggingLoader(*DefaultOptions(), nil)(path)
	if err != nil {
		t.Fatalf("loader error = %v", err)
	}
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("level/format = %q/%q", cfg.Level, cfg.Format)
	}
	want := map[string]string{"engine": "debug", "api": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}

	if _, err := LoggingLoader(*DefaultOptions(), nil)(filepath.Join(t.TempDir(), "gone.toml")); err == nil {
		t.Error("missing file should be an error")
	}
}

func TestLoggingLoaderKeepsOverrides(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"warn\"\nengine = \"info\"\napi = \"info\"\n")
	t.Setenv("LEDCYCLE_LOGGING_API", "error")

	var opts Options
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&opts.LoggingEngine, "logging-engine", "", "")
	if err := cmd.Flags().Set("logging-engine", "debug"); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoggingLoader(opts, cmd)(path)
	if err != nil {
		t.Fatalf("loader error = %v", err)
	}
	if cfg.Level != "warn" {
		t.Errorf("Level = %q, want file value warn", cfg.Level)
	}
	if cfg.Modules["engine"] != "debug" {
		t.Errorf("engine = %q, want flag value debug", cfg.Modules["engine"])
	}
	if cfg.Modules["api"] != "error" {
		t.Errorf("api = %q, want env value error", cfg.Modules["api"])
	}
}

func TestOptionsEngine(t *testing.T) {
	opts := defaultOptions("")
	eng, err := opts.Engine()
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	want := Engine{StepInterval: 80 * time.Millisecond, HoldInterval: 9001 * time.Millisecond, InitialLevel: 255}
	if eng != want {
		t.Errorf("Engine() = %+v, want %+v", eng, want)
	}

	bad := []func(o *Options){
		func(o *Options) { o.EngineStepInterval = "fast" },
		func(o *Options) { o.EngineHoldInterval = "-1s" },
		func(o *Options) { o.EngineInitialLevel = 256 },
		func(o *Options) { o.EngineInitialLevel = -1 },
	}
	for i, mutate := range bad {
		o := defaultOptions("")
		mutate(o)
		if _, err := o.Engine(); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("case %d: err = %v, want ErrInvalidOption", i, err)
		}
	}
}

func TestOptionsOutput(t *testing.T) {
	opts := defaultOptions("")
	opts.OutputLeds = " red, green ,,blue "
	cfg, err := opts.Output()
	if err != nil {
		t.Fatalf("Output() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.LEDs, []string{"red", "green", "blue"}) {
		t.Errorf("LEDs = %v", cfg.LEDs)
	}
	if !reflect.DeepEqual(cfg.PWMChannels, []int{0, 1, 2}) {
		t.Errorf("PWMChannels = %v", cfg.PWMChannels)
	}
	if cfg.ChannelCount() != 3 {
		t.Errorf("ChannelCount() = %d, want 3", cfg.ChannelCount())
	}

	opts.OutputBackend = led.BackendPWM
	opts.OutputPwmChannels = "4"
	cfg, err = opts.Output()
	if err != nil {
		t.Fatalf("Output() failed: %v", err)
	}
	if cfg.ChannelCount() != 1 {
		t.Errorf("pwm ChannelCount() = %d, want 1", cfg.ChannelCount())
	}

	bad := []func(o *Options){
		func(o *Options) { o.OutputBackend = "dmx" },
		func(o *Options) { o.OutputPwmChannels = "0,x" },
		func(o *Options) { o.OutputLeds = "" },
		func(o *Options) { o.OutputBackend = led.BackendPWM; o.OutputPwmPeriodNs = 0 },
	}
	for i, mutate := range bad {
		o := defaultOptions("")
		mutate(o)
		if _, err := o.Output(); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("case %d: err = %v, want ErrInvalidOption", i, err)
		}
	}
}

func TestOptionsLogging(t *testing.T) {
	opts := defaultOptions("")
	opts.LoggingEngine = "debug"

	cfg := opts.Logging()
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("level/format = %q/%q", cfg.Level, cfg.Format)
	}
	want := map[string]string{"engine": "debug"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}
}
