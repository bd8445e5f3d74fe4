// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gpt synthesizes the raw on-disk data for a GPT partitioned disk image.
//
// Given a logical description of a disk, Build produces the two byte blobs
// that bracket a valid GPT image: the header blob (protective MBR, primary
// GPT header, primary partition entry array) to be written at the start of
// the device, and the footer blob (backup partition entry array, backup GPT
// header) to be written at its end.
package gpt

import (
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/siderolabs/go-gptimage/internal/gptstructs"
)

// ErrInvalidDescriptor is returned when a descriptor fails validation.
//
// All validation failures wrap this error with a message identifying the
// failing rule.
var ErrInvalidDescriptor = errors.New("invalid GPT descriptor")

// GUID is a 16-byte identifier.
//
// The bytes are serialized to disk exactly in this order; the textual form
// is a loader concern (see the descriptor package).
type GUID [16]byte

// Partition is a single partition entry of a descriptor.
type Partition struct {
	// Name is the partition label, at most 36 UTF-16 code units once encoded.
	Name string

	TypeGUID   GUID
	UniqueGUID GUID

	// FirstLBA and LastLBA are both inclusive.
	FirstLBA uint64
	LastLBA  uint64

	Attributes uint64
}

// Descriptor describes a GPT disk to be built.
type Descriptor struct {
	// BlockSize is the logical block size, a non-zero multiple of 512.
	BlockSize uint64

	// NumberOfBlocks is the total number of logical blocks on the device.
	NumberOfBlocks uint64

	DiskGUID GUID

	// Partitions is the ordered, non-empty list of partition entries.
	Partitions []Partition
}

// Data is the synthesized on-disk data for a GPT device.
//
// Header is (2 + entry array blocks) * block size bytes and belongs at
// offset 0 of the device; Footer is (1 + entry array blocks) * block size
// bytes and belongs at the very end of the device. Everything between the
// two is partition content, which is not this package's concern.
type Data struct {
	Header []byte
	Footer []byte
}

// layout is the derived LBA geometry of the table.
type layout struct {
	entryBlocks uint64

	firstUsableLBA, lastUsableLBA uint64

	backupHeaderLBA                     uint64
	primaryEntriesLBA, backupEntriesLBA uint64
}

const primaryHeaderLBA = 1

func newLayout(desc *Descriptor) layout {
	entryBlocks := (gptstructs.EntrySize*uint64(len(desc.Partitions)) + desc.BlockSize - 1) / desc.BlockSize

	return layout{
		entryBlocks: entryBlocks,

		firstUsableLBA: 2 + entryBlocks,
		lastUsableLBA:  desc.NumberOfBlocks - entryBlocks - 2,

		backupHeaderLBA:   desc.NumberOfBlocks - 1,
		primaryEntriesLBA: 2,
		backupEntriesLBA:  desc.NumberOfBlocks - 1 - entryBlocks,
	}
}

// Build synthesizes GPT data for the descriptor.
//
// Build is a pure function: it performs no I/O, and the returned blobs are
// owned by the caller. The descriptor is validated before any byte is
// produced; failures are reported as ErrInvalidDescriptor.
func Build(desc Descriptor, opts ...Option) (*Data, error) {
	options := applyOptions(opts...)

	if desc.BlockSize == 0 || desc.BlockSize%512 != 0 {
		return nil, fmt.Errorf("%w: block size %d must be a non-zero multiple of 512", ErrInvalidDescriptor, desc.BlockSize)
	}

	if len(desc.Partitions) == 0 {
		return nil, fmt.Errorf("%w: at least one partition is required", ErrInvalidDescriptor)
	}

	if uint64(len(desc.Partitions)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: too many partitions: %d", ErrInvalidDescriptor, len(desc.Partitions))
	}

	l := newLayout(&desc)

	// 3 fixed metadata blocks (MBR + two headers), two copies of the entry
	// array, and at least one usable block.
	if desc.NumberOfBlocks < 3+2*l.entryBlocks+1 {
		return nil, fmt.Errorf("%w: number of blocks %d is too small for GPT metadata", ErrInvalidDescriptor, desc.NumberOfBlocks)
	}

	if err := validatePartitions(desc.Partitions, l); err != nil {
		return nil, err
	}

	options.Logger.Debug("computed GPT layout",
		zap.Uint64("entry_array_blocks", l.entryBlocks),
		zap.Uint64("first_usable_lba", l.firstUsableLBA),
		zap.Uint64("last_usable_lba", l.lastUsableLBA),
		zap.Uint64("backup_header_lba", l.backupHeaderLBA),
		zap.Uint64("backup_entries_lba", l.backupEntriesLBA),
	)

	entriesBuf, err := serializeEntries(desc.Partitions)
	if err != nil {
		return nil, err
	}

	entriesChecksum := crc32.ChecksumIEEE(entriesBuf)

	// fields shared between the primary and backup headers
	header := gptstructs.Header(make([]byte, gptstructs.HeaderSize))
	header.PutSignature(gptstructs.HeaderSignature)
	header.PutRevision(gptstructs.HeaderRevision)
	header.PutHeaderSize(gptstructs.HeaderSize)
	header.PutFirstUsableLBA(l.firstUsableLBA)
	header.PutLastUsableLBA(l.lastUsableLBA)
	header.PutDiskGUID(desc.DiskGUID[:])
	header.PutNumPartitionEntries(uint32(len(desc.Partitions)))
	header.PutSizeofPartitionEntry(gptstructs.EntrySize)
	header.PutPartitionEntryArrayCRC32(entriesChecksum)

	primaryHeader := gptstructs.Header(slices.Clone(header))
	primaryHeader.PutMyLBA(primaryHeaderLBA)
	primaryHeader.PutAlternateLBA(l.backupHeaderLBA)
	primaryHeader.PutPartitionEntryLBA(l.primaryEntriesLBA)
	primaryHeader.PutHeaderCRC32(primaryHeader.CalculateChecksum())

	backupHeader := gptstructs.Header(slices.Clone(header))
	backupHeader.PutMyLBA(l.backupHeaderLBA)
	backupHeader.PutAlternateLBA(primaryHeaderLBA)
	backupHeader.PutPartitionEntryLBA(l.backupEntriesLBA)
	backupHeader.PutHeaderCRC32(backupHeader.CalculateChecksum())

	data := &Data{
		Header: make([]byte, (2+l.entryBlocks)*desc.BlockSize),
		Footer: make([]byte, (1+l.entryBlocks)*desc.BlockSize),
	}

	copy(data.Header, buildProtectiveMBR(&desc, options.MarkPMBRBootable))
	copy(data.Header[desc.BlockSize:], primaryHeader)
	copy(data.Header[2*desc.BlockSize:], entriesBuf)

	copy(data.Footer, entriesBuf)
	copy(data.Footer[l.entryBlocks*desc.BlockSize:], backupHeader)

	return data, nil
}

func validatePartitions(partitions []Partition, l layout) error {
	for i := range partitions {
		p := &partitions[i]

		switch {
		case p.FirstLBA < l.firstUsableLBA:
			return fmt.Errorf("%w: partition %d starting LBA %d is less than first usable LBA %d",
				ErrInvalidDescriptor, i, p.FirstLBA, l.firstUsableLBA)
		case p.LastLBA > l.lastUsableLBA:
			return fmt.Errorf("%w: partition %d ending LBA %d is greater than last usable LBA %d",
				ErrInvalidDescriptor, i, p.LastLBA, l.lastUsableLBA)
		case p.FirstLBA > p.LastLBA:
			return fmt.Errorf("%w: partition %d starting LBA %d is greater than its ending LBA %d",
				ErrInvalidDescriptor, i, p.FirstLBA, p.LastLBA)
		}

		// The endpoint containment test is one-sided: a later partition lying
		// strictly inside an earlier one is not rejected.
		for j := i + 1; j < len(partitions); j++ {
			q := &partitions[j]

			if (p.FirstLBA >= q.FirstLBA && p.FirstLBA <= q.LastLBA) ||
				(p.LastLBA >= q.FirstLBA && p.LastLBA <= q.LastLBA) {
				return fmt.Errorf("%w: partitions %d and %d overlap", ErrInvalidDescriptor, i, j)
			}
		}
	}

	return nil
}

func serializeEntries(partitions []Partition) ([]byte, error) {
	buf := make([]byte, gptstructs.EntrySize*len(partitions))

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

	for i := range partitions {
		partition := &partitions[i]

		entry := gptstructs.Entry(buf[i*gptstructs.EntrySize : (i+1)*gptstructs.EntrySize])
		entry.PutPartitionTypeGUID(partition.TypeGUID[:])
		entry.PutUniquePartitionGUID(partition.UniqueGUID[:])
		entry.PutStartingLBA(partition.FirstLBA)
		entry.PutEndingLBA(partition.LastLBA)
		entry.PutAttributes(partition.Attributes)

		nameBuf, err := utf16.NewEncoder().Bytes([]byte(partition.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode partition name %q: %v", ErrInvalidDescriptor, partition.Name, err)
		}

		if len(nameBuf) > gptstructs.EntryNameSize {
			return nil, fmt.Errorf("%w: partition name %q too long: %d bytes", ErrInvalidDescriptor, partition.Name, len(nameBuf))
		}

		entry.PutPartitionName(nameBuf)
	}

	return buf, nil
}

func buildProtectiveMBR(desc *Descriptor, bootable bool) gptstructs.ProtectiveMBR {
	mbr := gptstructs.ProtectiveMBR(make([]byte, gptstructs.MBRSize))
	mbr.PutUniqueMBRDiskSignature(0)

	record := mbr.PartitionRecord(0)

	if bootable {
		// Some BIOSes in legacy mode won't boot from a disk unless there is at
		// least one partition in the MBR marked bootable. Mark this partition
		// as bootable.
		record.PutBootIndicator(0x80)
	}

	// CHS for the start of the partition
	record.PutStartingCHS([3]byte{0x00, 0x02, 0x00})

	// Partition type: GPT protective.
	record.PutOSType(0xee)

	// CHS for the end of the partition
	record.PutEndingCHS([3]byte{0xff, 0xff, 0xff})

	record.PutStartingLBA(1)

	// The single record spans the rest of the device. On disks with more than
	// 2^32 sectors the size saturates to 0x0FFFFFFF (the UEFI spec prescribes
	// 0xFFFFFFFF here).
	if desc.NumberOfBlocks-1 > math.MaxUint32 {
		record.PutSizeInLBA(0x0fffffff)
	} else {
		record.PutSizeInLBA(uint32(desc.NumberOfBlocks - 1))
	}

	mbr.PutSignature()

	return mbr
}
