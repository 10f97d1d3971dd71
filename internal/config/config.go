package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/ledcycle/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every `env` tag when reading environment overrides.
const EnvPrefix = "LEDCYCLE_"

// LoadConfig fills opts, a pointer to a struct tagged like Options, from the
// TOML file named by its Config field and from the environment.
// Precedence is flag > env > file: fields whose flag was set on cmd keep
// their value. A missing file is not an error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	file, err := readTOML(configPath(v))
	if err != nil {
		return err
	}
	changed := changedFlags(cmd)

	for i := range t.NumField() {
		sf := t.Field(i)
		if changed[fieldNameToFlag(sf.Name)] {
			continue
		}
		field := v.Field(i)

		if key := sf.Tag.Get("toml"); key != "" {
			if value := getNestedValue(file, key); value != nil {
				if err := setFieldValue(field, key, value); err != nil {
					return err
				}
			}
		}
		if key := sf.Tag.Get("env"); key != "" {
			if value := os.Getenv(EnvPrefix + key); value != "" {
				if err := setFieldValueFromString(field, EnvPrefix+key, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func configPath(v reflect.Value) string {
	if f := v.FieldByName("Config"); f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}

func readTOML(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var file map[string]any
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return file, nil
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			changed[f.Name] = true
		})
	}
	return changed
}

// fieldNameToFlag turns a field name into its kebab-case flag, keeping
// acronyms together: "OutputPWMChip" -> "output-pwm-chip".
func fieldNameToFlag(fieldName string) string {
	runes := []rune(fieldName)
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			afterLower := !unicode.IsUpper(runes[i-1])
			beforeLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if afterLower || beforeLower {
				sb.WriteByte('-')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// getNestedValue looks up a dotted path such as "engine.step_interval".
func getNestedValue(data map[string]any, path string) any {
	keys := strings.Split(path, ".")
	for _, key := range keys[:len(keys)-1] {
		next, ok := data[key].(map[string]any)
		if !ok {
			return nil
		}
		data = next
	}
	return data[keys[len(keys)-1]]
}

// setFieldValue assigns a decoded TOML value found at key. A value of the
// wrong type is an error; arrays assigned to string fields are joined with
// commas.
func setFieldValue(field reflect.Value, key string, value any) error {
	if !field.CanSet() {
		return nil
	}

	ok := true
	switch field.Kind() {
	case reflect.String:
		switch v := value.(type) {
		case string:
			field.SetString(v)
		case []any:
			field.SetString(strings.Join(stringsOf(v), ","))
		default:
			ok = false
		}
	case reflect.Bool:
		var b bool
		if b, ok = value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		default:
			ok = false
		}
	case reflect.Slice:
		var arr []any
		if arr, ok = value.([]any); ok && field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(stringsOf(arr)))
		}
	}

	if !ok {
		return fmt.Errorf("%w: %s: %s expected, got %T %v", ErrInvalidOption, key, field.Kind(), value, value)
	}
	return nil
}

// setFieldValueFromString assigns a string value, such as an environment
// variable named key. Unparsable values are an error; string slices are
// comma-separated.
func setFieldValueFromString(field reflect.Value, key, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidOption, key, value)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidOption, key, value)
		}
		field.SetInt(int64(n))
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(splitList(value)))
		}
	}
	return nil
}

func stringsOf(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprint(item)
	}
	return out
}

// LoggingLoader returns a watcher loader that recomputes the logging
// configuration from path with the same precedence as startup. base holds
// the options before the file was applied (defaults plus flags), so flags
// set on cmd and environment overrides survive a reload. A missing or
// unparsable file is an error, leaving the current levels in place.
func LoggingLoader(base Options, cmd *cobra.Command) func(path string) (logging.Config, error) {
	return func(path string) (logging.Config, error) {
		if _, err := os.Stat(path); err != nil {
			return logging.Config{}, err
		}
		opts := base
		opts.Config = path
		if err := LoadConfig(&opts, cmd); err != nil {
			return logging.Config{}, err
		}
		return opts.Logging(), nil
	}
}
