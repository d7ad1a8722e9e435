// Package config loads the benchmark's flat, line-oriented config file
// format (spec §6): "key = value" pairs, "#" comment lines, blank lines
// skipped, keys case-folded. Ported from the key/value semantics of
// dedup/src/config/parser.cpp -- lowercase the whole line before splitting,
// trim whitespace around both halves -- with the one deliberate change that
// a missing required key is a *deduperr.ConfigError naming the key, rather
// than the reference parser's silent "return UNKNOWN" fallback. Keys that
// the loader never reads are not checked: an unknown key is silently
// ignored, not reported.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/uwasl/dedupbench/internal/deduperr"
)

// Parser holds the flattened key/value dictionary read from a config file.
type Parser struct {
	dict map[string]string
}

// Parse reads and parses the config file at path.
func Parse(path string) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, deduperr.NewIoError(path, err)
	}
	defer f.Close()
	return parseReader(f)
}

func parseReader(r io.Reader) (*Parser, error) {
	dict := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		line = strings.ToLower(line)
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		dict[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, deduperr.NewIoError("config", err)
	}
	return &Parser{dict: dict}, nil
}

func (p *Parser) lookup(key string) (string, bool) {
	v, ok := p.dict[key]
	return v, ok
}

// require returns the raw string value for key, or a *deduperr.ConfigError
// naming it if absent.
func (p *Parser) require(key string) (string, error) {
	v, ok := p.lookup(key)
	if !ok {
		return "", deduperr.NewConfigError(key, fmt.Errorf("missing required key"))
	}
	return v, nil
}

// optional returns the raw string value for key, or def if absent.
func (p *Parser) optional(key, def string) string {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	return v
}

func (p *Parser) requireInt(key string) (int, error) {
	raw, err := p.require(key)
	if err != nil {
		return 0, err
	}
	return parseInt(key, raw)
}

func (p *Parser) optionalInt(key string, def int) (int, error) {
	raw, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	return parseInt(key, raw)
}

func (p *Parser) optionalUint64(key string, def uint64) (uint64, error) {
	raw, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, deduperr.NewConfigError(key, fmt.Errorf("invalid integer %q", raw))
	}
	return v, nil
}

func parseInt(key, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, deduperr.NewConfigError(key, fmt.Errorf("invalid integer %q", raw))
	}
	return v, nil
}
