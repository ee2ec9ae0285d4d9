// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hibari/ubf-thrift/bridge"
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

func decodeFixture(t *testing.T, message *thrift.Message) *thrift.Result {
	t.Helper()
	encoded, err := thrift.EncodeMessageVersion(message, thrift.Version1)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	result, err := thrift.DecodeMessage(bytes.Join(encoded, nil))
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return result
}

func TestMessageValueJSONShape(t *testing.T) {
	t.Parallel()
	result := decodeFixture(t, &thrift.Message{
		Name:  "ping",
		Type:  thrift.MessageCall,
		SeqID: 3,
		Payload: thrift.Struct{Fields: []thrift.Field{
			{Type: thrift.TypeBinary, ID: 1, Value: thrift.Binary("hello")},
			{Type: thrift.TypeI32, ID: 2, Value: thrift.I32(-4)},
		}},
	})

	value := messageValue(result, &bridge.Bridge{})
	output, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"name":"ping"`, `"type":"CALL"`, `"seqid":3`, `"version":"v1"`, `"hello"`} {
		if !strings.Contains(string(output), want) {
			t.Errorf("JSON %s missing %s", output, want)
		}
	}
}

func TestMessageValueUnwrapsEnvelope(t *testing.T) {
	t.Parallel()
	envelope, err := (&bridge.Bridge{}).Encode(term.List{term.Integer(1), term.Integer(2)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	result := decodeFixture(t, &thrift.Message{
		Name:    "$UBF",
		Type:    thrift.MessageCall,
		Payload: *envelope,
	})

	value := messageValue(result, &bridge.Bridge{})
	if got, ok := value["term"].(string); !ok || got != "[1,2]" {
		t.Errorf("term: got %v, want [1,2]", value["term"])
	}
}

func TestTermNotation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		t    term.Term
		want string
	}{
		{name: "binary", t: term.Binary("ok"), want: `<<"ok">>`},
		{name: "non-utf8 binary", t: term.Binary{0xff, 0xfe}, want: "<<0xfffe>>"},
		{name: "integer", t: term.Integer(-3), want: "-3"},
		{name: "float", t: term.Float(1.5), want: "1.5"},
		{name: "bool", t: term.Bool(true), want: "true"},
		{name: "atom", t: term.Atom("ok"), want: "ok"},
		{name: "string", t: term.String("hi"), want: `"hi"`},
		{name: "list", t: term.List{term.Integer(1), term.Atom("a")}, want: "[1,a]"},
		{name: "tuple", t: term.Tuple{term.Integer(1)}, want: "{1}"},
		{
			name: "proplist",
			t:    term.PropList{{Key: term.Atom("k"), Value: term.Integer(9)}},
			want: "[{k,9}]",
		},
		{
			name: "record",
			t:    term.Record{Name: "point", Fields: []term.Term{term.Integer(3), term.Integer(4)}},
			want: "#point{3,4}",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := termNotation(test.t); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestRenderTreePlain(t *testing.T) {
	t.Parallel()
	result := decodeFixture(t, &thrift.Message{
		Name:  "getThing",
		Type:  thrift.MessageReply,
		SeqID: 8,
		Payload: thrift.Struct{Fields: []thrift.Field{
			{Type: thrift.TypeList, ID: 1, Value: &thrift.List{
				ElemType: thrift.TypeI32,
				Elements: []thrift.Value{thrift.I32(5)},
			}},
		}},
	})

	var output bytes.Buffer
	renderer, err := newRenderer("tree", &output, false, &bridge.Bridge{})
	if err != nil {
		t.Fatalf("newRenderer: %v", err)
	}
	if err := renderer.render(result); err != nil {
		t.Fatalf("render: %v", err)
	}
	text := output.String()
	for _, want := range []string{"REPLY getThing seqid=8 (v1)", "list<I32> (1 elements)", "[0]: 5"} {
		if !strings.Contains(text, want) {
			t.Errorf("tree output missing %q:\n%s", want, text)
		}
	}
}

func TestNewRendererRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := newRenderer("xml", &bytes.Buffer{}, false, &bridge.Bridge{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
