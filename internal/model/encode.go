package model

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EncodeTOML renders v in the structured-config format. Table and key names
// come from `toml` struct tags.
func EncodeTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeDocument renders v in the tagged-document format: two-space indented
// JSON, which every YAML reader also accepts. Key names come from `json` tags.
func EncodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeCfg renders v in the ini-style format laid out the way Python's
// configparser writes it.
//
// v must be a struct (or pointer to one). Each field tagged `cfg:"name"`
// becomes a [name] section and must itself be a struct with `cfg` tagged
// fields or a map[string]string / map[string][]string. Values are strings or
// string slices; a slice is written as a newline-led list.
func EncodeCfg(v any) ([]byte, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cfg: expected struct, got %s", rv.Kind())
	}

	var buf bytes.Buffer
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		section, ok := rt.Field(i).Tag.Lookup("cfg")
		if !ok || section == "-" {
			continue
		}

		keys, err := cfgKeys(rv.Field(i))
		if err != nil {
			return nil, fmt.Errorf("cfg: section %s: %w", section, err)
		}

		fmt.Fprintf(&buf, "[%s]\n", section)
		for _, kv := range keys {
			value := strings.ReplaceAll(kv[1], "\n", "\n\t")
			fmt.Fprintf(&buf, "%s = %s\n", kv[0], value)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func cfgKeys(v reflect.Value) ([][2]string, error) {
	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Struct:
		var keys [][2]string
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name, ok := t.Field(i).Tag.Lookup("cfg")
			if !ok || name == "-" {
				continue
			}
			value, err := cfgValue(v.Field(i))
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", name, err)
			}
			keys = append(keys, [2]string{name, value})
		}
		return keys, nil

	case reflect.Map:
		names := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			names = append(names, k.String())
		}
		sort.Strings(names)

		keys := make([][2]string, 0, len(names))
		for _, name := range names {
			value, err := cfgValue(v.MapIndex(reflect.ValueOf(name)))
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", name, err)
			}
			keys = append(keys, [2]string{name, value})
		}
		return keys, nil
	}

	return nil, fmt.Errorf("unsupported section kind %s", v.Kind())
}

func cfgValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.String {
			break
		}
		if v.Len() == 0 {
			return "", nil
		}
		items := make([]string, v.Len())
		for i := range items {
			items[i] = v.Index(i).String()
		}
		return "\n" + strings.Join(items, "\n"), nil
	}
	return "", fmt.Errorf("unsupported value kind %s", v.Kind())
}

// ParseCfg reads ini-style text back into section -> key -> value. Indented
// lines continue the previous value, joined with a newline.
func ParseCfg(data []byte) (map[string]map[string]string, error) {
	sections := make(map[string]map[string]string)
	var current map[string]string
	var lastKey string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";"):
			continue

		case line[0] == ' ' || line[0] == '\t':
			if current == nil || lastKey == "" {
				return nil, fmt.Errorf("line %d: continuation without a key", lineNo)
			}
			current[lastKey] += "\n" + trimmed

		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if _, exists := sections[name]; exists {
				return nil, fmt.Errorf("line %d: duplicate section %s", lineNo, name)
			}
			current = make(map[string]string)
			sections[name] = current
			lastKey = ""

		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: key outside of a section", lineNo)
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fmt.Errorf("line %d: expected key = value", lineNo)
			}
			lastKey = strings.TrimSpace(key)
			current[lastKey] = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}
