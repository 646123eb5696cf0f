// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package descriptor loads the JSON description of a UFE board: its
// identity, firmware and hardware versions, and the variables making up its
// direct, readout and status parameter words.
package descriptor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema"
)

// VariableType is the $type every variable must declare.
const VariableType = "UnigeFrontEnd.Config.Variable"

// Parameter groups of a board.
const (
	DirectParameters      = "DirectParameters"
	DataReadoutParameters = "DataReadoutParameters"
	StatusParameters      = "StatusParameters"
)

//go:embed schema.json
var schemaJSON string

var memberSchema = compileSchema()

func compileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("schema.json")
}

// schemaMessage reports the first leaf cause of a validation failure, which
// names the offending member.
func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Error()
}

// Frame is a board descriptor.
type Frame struct {
	Name             string
	Version          float64
	MinFpgaVersion   float64
	DeviceMemorySize int
	FirmwareVIds     []FirmwareVId
	HardwareVIds     []HardwareVId
	Board            Board
	// FPGA and ASICS hold the raw descriptions of the children devices.
	FPGA  json.RawMessage
	ASICS json.RawMessage
}

// FirmwareVId identifies a firmware release.
type FirmwareVId struct {
	MajorID      uint
	MinorID      uint
	ShortName    string
	FriendlyName string
}

// HardwareVId identifies a hardware revision.
type HardwareVId struct {
	ID           uint
	ShortName    string
	FriendlyName string
}

// Board groups the parameter words of a board.
type Board struct {
	DirectParameters      Parameters
	DataReadoutParameters Parameters
	StatusParameters      Parameters
}

// Parameters is the list of variables packed into one parameter word.
type Parameters struct {
	Variables []Variable
}

// Variable is one field of a parameter word.
type Variable struct {
	Name         string
	Type         string
	Default      int
	Min          int
	Max          int
	BitSize      int
	MemoryLayout MemoryLayout
}

// MemoryLayout locates a variable in its word.
type MemoryLayout struct {
	Index     uint
	Increment int
	MsbFirst  bool
	Absolute  bool
}

// Load reads and parses the descriptor stored at path.
func Load(path string) (*Frame, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading descriptor %s", path)
	}
	return Parse(data)
}

// Parse parses a descriptor. Every error it returns is an *Error.
func Parse(data []byte) (*Frame, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, &Error{Description: err.Error(), Location: "Frame", Severity: Fatal}
	}
	if err := memberSchema.Validate(bytes.NewReader(data)); err != nil {
		return nil, &Error{Description: schemaMessage(err), Location: "Frame", Severity: Serious}
	}

	f := &Frame{}
	const loc = "Frame"
	if err := doc.get(loc, "Name", &f.Name, true); err != nil {
		return nil, err
	}
	if err := doc.number(loc, "Version", &f.Version, true); err != nil {
		return nil, err
	}
	if err := doc.number(loc, "MinFpgaVersion", &f.MinFpgaVersion, true); err != nil {
		return nil, err
	}
	if err := doc.get(loc, "DeviceMemorySize", &f.DeviceMemorySize, true); err != nil {
		return nil, err
	}

	fvs, err := doc.objects(loc, "FirmwareVIds")
	if err != nil {
		return nil, err
	}
	for _, o := range fvs {
		var fv FirmwareVId
		if err := o.getAll("FirmwareVId", []member{
			{"MajorId", &fv.MajorID},
			{"MinorId", &fv.MinorID},
			{"ShortName", &fv.ShortName},
			{"FriendlyName", &fv.FriendlyName},
		}); err != nil {
			return nil, err
		}
		f.FirmwareVIds = append(f.FirmwareVIds, fv)
	}

	hvs, err := doc.objects(loc, "HardwareVIds")
	if err != nil {
		return nil, err
	}
	for _, o := range hvs {
		var hv HardwareVId
		if err := o.getAll("HardwareVId", []member{
			{"Id", &hv.ID},
			{"ShortName", &hv.ShortName},
			{"FriendlyName", &hv.FriendlyName},
		}); err != nil {
			return nil, err
		}
		f.HardwareVIds = append(f.HardwareVIds, hv)
	}

	if raw, ok := doc["Board"]; ok {
		if err := f.Board.parse(raw); err != nil {
			return nil, err
		}
	}

	children, err := doc.objects(loc, "Children")
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		name, _ := child.name()
		raw, _ := json.Marshal(child)
		switch name {
		case "FPGA":
			f.FPGA = raw
		case "ASICS":
			f.ASICS = raw
		}
	}
	return f, nil
}

func (b *Board) parse(raw json.RawMessage) error {
	doc, err := decodeObject(raw)
	if err != nil {
		return &Error{Description: err.Error(), Location: "Board", Severity: Fatal}
	}
	groups := []struct {
		key    string
		params *Parameters
	}{
		{DirectParameters, &b.DirectParameters},
		{DataReadoutParameters, &b.DataReadoutParameters},
		{StatusParameters, &b.StatusParameters},
	}
	for _, g := range groups {
		raw, ok := doc[g.key]
		if !ok {
			continue
		}
		group, err := decodeObject(raw)
		if err != nil {
			return &Error{Description: err.Error(), Location: g.key, Severity: Fatal}
		}
		vars, err := group.objects(g.key, "Variables")
		if err != nil {
			return err
		}
		for _, o := range vars {
			v, err := parseVariable(o)
			if err != nil {
				return err
			}
			g.params.Variables = append(g.params.Variables, v)
		}
	}
	return nil
}

func parseVariable(doc object) (Variable, error) {
	var v Variable
	var typ string
	if raw, ok := doc["$type"]; ok {
		json.Unmarshal(raw, &typ)
	}
	if typ != VariableType {
		raw, _ := json.Marshal(doc)
		return v, &Error{
			Description: fmt.Sprintf("%s\n*** This is not a Variable!", raw),
			Location:    "Variable",
			Severity:    Fatal,
		}
	}
	if err := doc.getAll("Variable", []member{
		{"Default", &v.Default},
		{"Min", &v.Min},
		{"Max", &v.Max},
		{"BitSize", &v.BitSize},
		{"Name", &v.Name},
		{"Type", &v.Type},
	}); err != nil {
		return v, err
	}

	// A variable without layout reads as an empty layout.
	layout := object{}
	if raw, ok := doc["MemoryLayout"]; ok {
		var err error
		if layout, err = decodeObject(raw); err != nil {
			return v, &Error{Description: err.Error(), Location: "MemoryLayout", Severity: Fatal}
		}
	}
	v.MemoryLayout.Increment = -1
	const loc = "MemoryLayout"
	if err := layout.get(loc, "Index", &v.MemoryLayout.Index, true); err != nil {
		return v, err
	}
	if err := layout.get(loc, "Increment", &v.MemoryLayout.Increment, false); err != nil {
		return v, err
	}
	if err := layout.get(loc, "MsbFirst", &v.MemoryLayout.MsbFirst, false); err != nil {
		return v, err
	}
	if err := layout.get(loc, "Absolute", &v.MemoryLayout.Absolute, false); err != nil {
		return v, err
	}
	return v, nil
}

// Parameters returns the parameter group with the given name.
func (f *Frame) Parameters(group string) (*Parameters, bool) {
	switch group {
	case DirectParameters:
		return &f.Board.DirectParameters, true
	case DataReadoutParameters:
		return &f.Board.DataReadoutParameters, true
	case StatusParameters:
		return &f.Board.StatusParameters, true
	}
	return nil, false
}

// Variable looks up a variable by group and name.
func (f *Frame) Variable(group, name string) (*Variable, bool) {
	params, ok := f.Parameters(group)
	if !ok {
		return nil, false
	}
	for i := range params.Variables {
		if params.Variables[i].Name == name {
			return &params.Variables[i], true
		}
	}
	return nil, false
}

// Validate checks value against the range and the width of the variable.
func (v *Variable) Validate(value int) error {
	if value < v.Min || value > v.Max {
		return &Error{
			Description: fmt.Sprintf("value %d of %s is outside [%d, %d]", value, v.Name, v.Min, v.Max),
			Location:    "Variable",
			Severity:    Serious,
		}
	}
	if v.BitSize > 0 && v.BitSize < 63 && (value < 0 || value >= 1<<uint(v.BitSize)) {
		return &Error{
			Description: fmt.Sprintf("value %d of %s does not fit in %d bits", value, v.Name, v.BitSize),
			Location:    "Variable",
			Severity:    Serious,
		}
	}
	return nil
}

// Extract returns the field of word the variable occupies: BitSize bits
// starting at bit MemoryLayout.Index.
func (v *Variable) Extract(word uint32) int {
	if v.BitSize <= 0 {
		return 0
	}
	mask := uint64(1)<<uint(v.BitSize) - 1
	return int((uint64(word) >> v.MemoryLayout.Index) & mask)
}

// Check validates every variable packed into word.
func (p *Parameters) Check(word uint32) error {
	for i := range p.Variables {
		v := &p.Variables[i]
		if err := v.Validate(v.Extract(word)); err != nil {
			return err
		}
	}
	return nil
}

// object is a JSON object with its members left undecoded.
type object map[string]json.RawMessage

func decodeObject(data []byte) (object, error) {
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	if o == nil {
		o = object{}
	}
	return o, nil
}

func (o object) name() (string, bool) {
	raw, ok := o["Name"]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), true
	}
	return s, true
}

type member struct {
	key string
	dst interface{}
}

// getAll decodes compulsory members in order.
func (o object) getAll(location string, members []member) error {
	for _, m := range members {
		if err := o.get(location, m.key, m.dst, true); err != nil {
			return err
		}
	}
	return nil
}

func (o object) get(location, key string, dst interface{}, compulsory bool) error {
	raw, ok := o[key]
	if !ok {
		if compulsory {
			return missingMember(location, o, key)
		}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &Error{
			Description: fmt.Sprintf("member >>%s<< has the wrong type: %s", key, err),
			Location:    location,
			Severity:    Serious,
		}
	}
	return nil
}

// number decodes a member given either as a JSON number or as a string.
func (o object) number(location, key string, dst *float64, compulsory bool) error {
	var v interface{}
	if err := o.get(location, key, &v, compulsory); err != nil || v == nil {
		return err
	}
	switch n := v.(type) {
	case float64:
		*dst = n
		return nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			*dst = f
			return nil
		}
	}
	return &Error{
		Description: fmt.Sprintf("member >>%s<< is not a number", key),
		Location:    location,
		Severity:    Serious,
	}
}

// objects decodes an optional array of objects.
func (o object) objects(location, key string) ([]object, error) {
	var raws []json.RawMessage
	if err := o.get(location, key, &raws, false); err != nil {
		return nil, err
	}
	list := make([]object, 0, len(raws))
	for _, raw := range raws {
		item, err := decodeObject(raw)
		if err != nil {
			return nil, &Error{Description: err.Error(), Location: key, Severity: Fatal}
		}
		list = append(list, item)
	}
	return list, nil
}
