package configparser

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// LoadAndParseYaml loads the YAML file into the environment (if a path is given)
// and fills cfg from `env` / `default` struct tags.
func LoadAndParseYaml(filepath string, cfg any) error {
	if filepath != "" {
		if err := LoadYamlFile(filepath); err != nil {
			return err
		}
	}

	return ParseEnv(cfg)
}

// ParseEnv walks the struct pointed to by cfg and sets every field that has an
// `env` tag. Nested structs are walked recursively.
func ParseEnv(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a pointer to struct, got %T", cfg)
	}

	return parseStruct(v.Elem())
}

func parseStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		if !field.IsExported() {
			continue
		}

		key, hasKey := field.Tag.Lookup("env")
		if !hasKey {
			if fv.Kind() == reflect.Struct {
				if err := parseStruct(fv); err != nil {
					return err
				}
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			raw, ok = field.Tag.Lookup("default")
			if !ok {
				continue
			}
		}

		if err := setValue(fv, raw); err != nil {
			return fmt.Errorf("field %s (%s): %w", field.Name, key, err)
		}
	}

	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func setValue(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}

	return nil
}
