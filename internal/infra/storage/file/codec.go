package file

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/resilient/internal/core/domain"
)

// Codec serializes a record to a dump file.
type Codec interface {
	Encode(w io.Writer, rec *domain.Record) error
	Decode(r io.Reader) (*domain.Record, error)
}

// CodecFor picks the codec from the file extension. Unknown extensions use JSON.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	case ".gob":
		return gobCodec{}
	case ".pb", ".binpb":
		return protoCodec{}
	default:
		return jsonCodec{}
	}
}

type jsonCodec struct{}

func (jsonCodec) Encode(w io.Writer, rec *domain.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func (jsonCodec) Decode(r io.Reader) (*domain.Record, error) {
	var rec domain.Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

type yamlCodec struct{}

func (yamlCodec) Encode(w io.Writer, rec *domain.Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (yamlCodec) Decode(r io.Reader) (*domain.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var rec domain.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

type gobCodec struct{}

func (gobCodec) Encode(w io.Writer, rec *domain.Record) error {
	return gob.NewEncoder(w).Encode(rec)
}

func (gobCodec) Decode(r io.Reader) (*domain.Record, error) {
	var rec domain.Record
	if err := gob.NewDecoder(r).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// protoCodec stores the record as a google.protobuf.Struct built from its
// JSON form.
type protoCodec struct{}

func (protoCodec) Encode(w io.Writer, rec *domain.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return fmt.Errorf("failed to build struct: %w", err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (protoCodec) Decode(r io.Reader) (*domain.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, err
	}
	var rec domain.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
