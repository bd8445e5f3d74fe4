// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// GPT is a little-endian on-disk format; big-endian hosts are not supported.
//
//go:build 386 || amd64 || amd64p32 || arm || arm64 || loong64 || mips64le || mipsle || ppc64le || riscv64 || wasm

// Package gptstructs provides byte-level definitions for GPT on-disk structures.
//
// Each structure is a byte slice with accessors, so serialization is the
// identity: the slice contents are the exact wire bytes, with all multi-byte
// fields little-endian and no padding between fields.
package gptstructs

// HeaderSignature is the signature of the GPT header ("EFI PART").
const HeaderSignature = 0x5452415020494645

// HeaderRevision is the GPT revision encoded in UEFI 2.8 headers (1.0).
const HeaderRevision = 0x00010000

// Sizes of the on-disk structures, in bytes.
const (
	HeaderSize = 92
	EntrySize  = 128
	MBRSize    = 512

	// EntryNameSize is the size of the partition name region of an entry:
	// 36 UTF-16LE code units.
	EntryNameSize = 72
)
