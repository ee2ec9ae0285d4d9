// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Command tbp inspects Thrift Binary Protocol streams. It reads raw,
// hex-encoded, or length-prefixed message bytes from a file or stdin,
// decodes each message with the resumable decoder, and renders the
// results as a colored tree, JSON, a deterministic CBOR sequence, or
// CBOR diagnostic notation.
//
// Messages named "$UBF" additionally unwrap through the term bridge,
// so wrapped terms display in term notation alongside the raw Thrift
// tree. Pass a contract registry file to resolve record schemas during
// unwrapping.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	xterm "golang.org/x/term"

	"github.com/hibari/ubf-thrift/bridge"
	"github.com/hibari/ubf-thrift/contract"
	"github.com/hibari/ubf-thrift/session"
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

// readChunkSize is the slice size fed to the resumable decoder per
// step. Messages longer than this span several Feed calls, so the tool
// exercises the decoder's continuation path on real data.
const readChunkSize = 4096

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		hexInput     bool
		framed       bool
		format       string
		contractPath string
		maxMessages  int
		verbose      bool
	)

	flag.BoolVarP(&hexInput, "hex", "x", false, "treat input as hex-encoded bytes (whitespace ignored)")
	flag.BoolVar(&framed, "framed", false, "input carries length-prefixed frames, one message per frame")
	flag.StringVarP(&format, "format", "f", "", "output format: tree, json, compact, cbor, diag (default: tree on a terminal, json otherwise)")
	flag.StringVar(&contractPath, "contract", "", "contract registry file (JSONC or YAML) for record-aware term display")
	flag.IntVarP(&maxMessages, "max-messages", "n", 0, "stop after this many messages (0 = all)")
	flag.BoolVarP(&verbose, "verbose", "v", false, "log decode progress to stderr")
	flag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	data, err := readInput(flag.Args(), hexInput)
	if err != nil {
		return err
	}

	termBridge := &bridge.Bridge{Atoms: term.NewAtomTable()}
	if contractPath != "" {
		registry, atoms, err := contract.Load(contractPath)
		if err != nil {
			return err
		}
		termBridge.Registry = registry
		termBridge.Atoms.Preload(atoms...)
		logger.Debug("loaded contract registry",
			"path", contractPath,
			"records", len(registry.Records()),
			"atoms", len(atoms),
		)
	}

	onTerminal := xterm.IsTerminal(int(os.Stdout.Fd()))
	if format == "" {
		format = "json"
		if onTerminal {
			format = "tree"
		}
	}
	renderer, err := newRenderer(format, os.Stdout, onTerminal, termBridge)
	if err != nil {
		return err
	}

	if framed {
		return decodeFramed(data, renderer, maxMessages, logger)
	}
	return decodeStream(data, renderer, maxMessages, logger)
}

// readInput loads the input bytes from the single optional positional
// file argument, or stdin. With hexInput, the bytes are hex-decoded
// first, ignoring whitespace.
func readInput(args []string, hexInput bool) ([]byte, error) {
	var reader io.Reader = os.Stdin
	switch len(args) {
	case 0:
	case 1:
		file, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	default:
		return nil, fmt.Errorf("at most one input file, got %d arguments", len(args))
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: expected Thrift message bytes")
	}

	if hexInput {
		compact := strings.Join(strings.Fields(string(data)), "")
		decoded, err := hex.DecodeString(compact)
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
		return decoded, nil
	}
	return data, nil
}

// decodeStream decodes back-to-back messages from a raw byte stream,
// feeding the resumable decoder in bounded chunks.
func decodeStream(data []byte, renderer *renderer, maxMessages int, logger *slog.Logger) error {
	count := 0
	rest := data
	for len(rest) > 0 {
		decoder := thrift.NewDecoder(thrift.DecoderOptions{})

		var result *thrift.Result
		offset := 0
		for result == nil {
			if offset >= len(rest) {
				return fmt.Errorf("message %d: truncated at end of input", count+1)
			}
			end := min(offset+readChunkSize, len(rest))
			var err error
			result, err = decoder.Feed(rest[offset:end])
			if err != nil {
				return fmt.Errorf("message %d: %w", count+1, err)
			}
			offset = end
		}

		if err := renderer.render(result); err != nil {
			return err
		}
		count++
		logger.Debug("decoded message",
			"index", count,
			"name", result.Message.Name,
			"type", result.Message.Type.String(),
		)

		rest = append(result.Remainder, rest[offset:]...)
		if maxMessages > 0 && count >= maxMessages {
			break
		}
	}
	return nil
}

// decodeFramed decodes a stream of length-prefixed frames, one message
// per frame.
func decodeFramed(data []byte, renderer *renderer, maxMessages int, logger *slog.Logger) error {
	reader := bytes.NewReader(data)
	count := 0
	for {
		payload, err := session.ReadFrame(reader, 0)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", count+1, err)
		}

		result, err := thrift.DecodeMessage(payload)
		if err != nil {
			return fmt.Errorf("frame %d: %w", count+1, err)
		}
		if len(result.Remainder) > 0 {
			logger.Warn("frame carries trailing bytes after message",
				"frame", count+1,
				"trailing_bytes", len(result.Remainder),
			)
		}

		if err := renderer.render(result); err != nil {
			return err
		}
		count++
		if maxMessages > 0 && count >= maxMessages {
			return nil
		}
	}
}
