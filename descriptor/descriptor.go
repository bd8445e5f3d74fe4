// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package descriptor loads GPT disk descriptors from JSON documents.
//
// The document shape is:
//
//	{
//	  "block_size": 512,
//	  "number_of_blocks": 2048,
//	  "disk_guid": "01234567-89ab-cdef-0123-456789abcdef",
//	  "partitions": [
//	    {
//	      "partition_type_guid": "c12a7328-f81f-11d2-ba4b-00a0c93ec93b",
//	      "unique_partition_guid": "…",
//	      "starting_lba": 34,
//	      "ending_lba": 2014,
//	      "attributes": 0,
//	      "partition_name": "boot"
//	    }
//	  ]
//	}
//
// GUIDs use the canonical eight-four-four-four-twelve hex form; each pair of
// hex digits becomes one byte in the given order. "attributes" and
// "partition_name" may be omitted.
package descriptor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/siderolabs/go-pointer"
	"golang.org/x/text/encoding/unicode"

	"github.com/siderolabs/go-gptimage/gpt"
	"github.com/siderolabs/go-gptimage/internal/gptstructs"
)

type partitionDoc struct {
	PartitionTypeGUID   string  `json:"partition_type_guid"`
	UniquePartitionGUID string  `json:"unique_partition_guid"`
	StartingLBA         uint64  `json:"starting_lba"`
	EndingLBA           uint64  `json:"ending_lba"`
	Attributes          *uint64 `json:"attributes"`
	PartitionName       *string `json:"partition_name"`
}

type descriptorDoc struct {
	BlockSize      uint64         `json:"block_size"`
	NumberOfBlocks uint64         `json:"number_of_blocks"`
	DiskGUID       string         `json:"disk_guid"`
	Partitions     []partitionDoc `json:"partitions"`
}

// Load parses a JSON descriptor document.
//
// Load only checks what the document format itself demands (GUID text form,
// partition name length); the geometry rules are the builder's concern.
func Load(r io.Reader) (gpt.Descriptor, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var doc descriptorDoc

	if err := decoder.Decode(&doc); err != nil {
		return gpt.Descriptor{}, fmt.Errorf("failed to parse descriptor: %w", err)
	}

	diskGUID, err := parseGUID(doc.DiskGUID)
	if err != nil {
		return gpt.Descriptor{}, fmt.Errorf("disk_guid: %w", err)
	}

	desc := gpt.Descriptor{
		BlockSize:      doc.BlockSize,
		NumberOfBlocks: doc.NumberOfBlocks,
		DiskGUID:       diskGUID,
		Partitions:     make([]gpt.Partition, 0, len(doc.Partitions)),
	}

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

	for i, p := range doc.Partitions {
		typeGUID, err := parseGUID(p.PartitionTypeGUID)
		if err != nil {
			return gpt.Descriptor{}, fmt.Errorf("partition %d: partition_type_guid: %w", i, err)
		}

		uniqueGUID, err := parseGUID(p.UniquePartitionGUID)
		if err != nil {
			return gpt.Descriptor{}, fmt.Errorf("partition %d: unique_partition_guid: %w", i, err)
		}

		name := pointer.SafeDeref(p.PartitionName)

		nameBuf, err := utf16.NewEncoder().Bytes([]byte(name))
		if err != nil {
			return gpt.Descriptor{}, fmt.Errorf("partition %d: failed to encode partition name %q: %w", i, name, err)
		}

		if len(nameBuf) > gptstructs.EntryNameSize {
			return gpt.Descriptor{}, fmt.Errorf("partition %d: partition name %q is longer than 36 UTF-16 code units", i, name)
		}

		desc.Partitions = append(desc.Partitions, gpt.Partition{
			Name:       name,
			TypeGUID:   typeGUID,
			UniqueGUID: uniqueGUID,
			FirstLBA:   p.StartingLBA,
			LastLBA:    p.EndingLBA,
			Attributes: pointer.SafeDeref(p.Attributes),
		})
	}

	return desc, nil
}

// LoadFile parses a JSON descriptor from a file.
func LoadFile(path string) (gpt.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return gpt.Descriptor{}, err
	}

	defer f.Close() //nolint:errcheck

	return Load(f)
}

// parseGUID parses the canonical dashed hex form, keeping the bytes in the
// order given: the result is not re-encoded to the mixed-endian layout RFC
// 4122 UUIDs use on GPT disks, as the builder serializes GUIDs verbatim.
func parseGUID(s string) (gpt.GUID, error) {
	if len(s) != 36 {
		return gpt.GUID{}, fmt.Errorf("not a GUID: %q", s)
	}

	u, err := uuid.Parse(s)
	if err != nil {
		return gpt.GUID{}, err
	}

	return gpt.GUID(u), nil
}
