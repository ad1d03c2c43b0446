// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lms7x/lms7core/rap"
)

//go:embed assets/params.yaml
var paramsYAML []byte

// Param is a named bit field: the inclusive [msb, lsb] slice of
// register Addr that the name addresses.
type Param struct {
	Name string `yaml:"name"`
	Addr uint16 `yaml:"addr"`
	MSB  uint8  `yaml:"msb"`
	LSB  uint8  `yaml:"lsb"`
}

func (p Param) mask() uint16 {
	width := p.MSB - p.LSB + 1
	return ((uint16(1) << width) - 1) << p.LSB
}

// ParamTable is a loaded, name-indexed bit-field map.
type ParamTable struct {
	byName map[string]Param
}

// LoadParamTable parses a bit-field table from YAML in the format of
// assets/params.yaml. It is exported so callers can load a variant
// table (e.g. for a chip revision with different field layout) without
// forking the package.
func LoadParamTable(data []byte) (*ParamTable, error) {
	var params []Param
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("chipctl: parse param table: %w", err)
	}
	t := &ParamTable{byName: make(map[string]Param, len(params))}
	for _, p := range params {
		if p.MSB < p.LSB {
			return nil, fmt.Errorf("chipctl: param %q has msb < lsb", p.Name)
		}
		t.byName[p.Name] = p
	}
	return t, nil
}

// DefaultParamTable is the bit-field table embedded in the module.
var DefaultParamTable = mustLoadDefault()

func mustLoadDefault() *ParamTable {
	t, err := LoadParamTable(paramsYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the Param for name, or ErrUnknownParam.
func (t *ParamTable) Lookup(name string) (Param, error) {
	p, ok := t.byName[name]
	if !ok {
		return Param{}, fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return p, nil
}

// GetBits reads the named field's current value from port, shifted
// down to bit 0.
func (t *ParamTable) GetBits(port rap.Port, name string) (uint16, error) {
	p, err := t.Lookup(name)
	if err != nil {
		return 0, err
	}
	reg, err := port.ReadReg(p.Addr)
	if err != nil {
		return 0, fmt.Errorf("chipctl: read %s: %w", name, err)
	}
	return (reg & p.mask()) >> p.LSB, nil
}

// ModifyBits writes value into the named field via a masked
// read-modify-write, leaving the rest of the register untouched.
func (t *ParamTable) ModifyBits(port rap.Port, name string, value uint16) error {
	p, err := t.Lookup(name)
	if err != nil {
		return err
	}
	mask := p.mask()
	if (value<<p.LSB)&^mask != 0 {
		return fmt.Errorf("%w: %s value %d exceeds field width", ErrOutOfRange, name, value)
	}
	batch := rap.RegisterBatch{Masked: []rap.MaskedWrite{{Addr: p.Addr, Data: value << p.LSB, Mask: mask}}}
	if err := port.WriteMaskedBatch(batch); err != nil {
		return fmt.Errorf("chipctl: modify %s: %w", name, err)
	}
	return nil
}

// GetBits and ModifyBits on the package-level DefaultParamTable, for
// the common case of callers that don't carry their own table.

// GetBits reads the named field using DefaultParamTable.
func GetBits(port rap.Port, name string) (uint16, error) {
	return DefaultParamTable.GetBits(port, name)
}

// ModifyBits writes the named field using DefaultParamTable.
func ModifyBits(port rap.Port, name string, value uint16) error {
	return DefaultParamTable.ModifyBits(port, name, value)
}
