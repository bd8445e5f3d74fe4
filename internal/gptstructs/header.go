// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gptstructs

import (
	"encoding/binary"
	"hash/crc32"
	"slices"
)

// Header is a GPT header (UEFI 2.8, Section 5.3.2, Table 21).
//
// The slice must be at least HeaderSize bytes long.
type Header []byte

// Signature returns the header signature.
func (h Header) Signature() uint64 {
	return binary.LittleEndian.Uint64(h[0:8])
}

// PutSignature sets the header signature.
func (h Header) PutSignature(v uint64) {
	binary.LittleEndian.PutUint64(h[0:8], v)
}

// Revision returns the header revision.
func (h Header) Revision() uint32 {
	return binary.LittleEndian.Uint32(h[8:12])
}

// PutRevision sets the header revision.
func (h Header) PutRevision(v uint32) {
	binary.LittleEndian.PutUint32(h[8:12], v)
}

// HeaderSize returns the size of the header in bytes.
func (h Header) HeaderSize() uint32 {
	return binary.LittleEndian.Uint32(h[12:16])
}

// PutHeaderSize sets the size of the header in bytes.
func (h Header) PutHeaderSize(v uint32) {
	binary.LittleEndian.PutUint32(h[12:16], v)
}

// HeaderCRC32 returns the stored header checksum.
func (h Header) HeaderCRC32() uint32 {
	return binary.LittleEndian.Uint32(h[16:20])
}

// PutHeaderCRC32 sets the header checksum.
func (h Header) PutHeaderCRC32(v uint32) {
	binary.LittleEndian.PutUint32(h[16:20], v)
}

// MyLBA returns the LBA the header claims to reside at.
func (h Header) MyLBA() uint64 {
	return binary.LittleEndian.Uint64(h[24:32])
}

// PutMyLBA sets the LBA the header resides at.
func (h Header) PutMyLBA(v uint64) {
	binary.LittleEndian.PutUint64(h[24:32], v)
}

// AlternateLBA returns the LBA of the other copy of the header.
func (h Header) AlternateLBA() uint64 {
	return binary.LittleEndian.Uint64(h[32:40])
}

// PutAlternateLBA sets the LBA of the other copy of the header.
func (h Header) PutAlternateLBA(v uint64) {
	binary.LittleEndian.PutUint64(h[32:40], v)
}

// FirstUsableLBA returns the first usable LBA for partitions.
func (h Header) FirstUsableLBA() uint64 {
	return binary.LittleEndian.Uint64(h[40:48])
}

// PutFirstUsableLBA sets the first usable LBA for partitions.
func (h Header) PutFirstUsableLBA(v uint64) {
	binary.LittleEndian.PutUint64(h[40:48], v)
}

// LastUsableLBA returns the last usable LBA for partitions.
func (h Header) LastUsableLBA() uint64 {
	return binary.LittleEndian.Uint64(h[48:56])
}

// PutLastUsableLBA sets the last usable LBA for partitions.
func (h Header) PutLastUsableLBA(v uint64) {
	binary.LittleEndian.PutUint64(h[48:56], v)
}

// DiskGUID returns the disk GUID bytes.
func (h Header) DiskGUID() []byte {
	return []byte(h[56:72])
}

// PutDiskGUID sets the disk GUID bytes.
func (h Header) PutDiskGUID(b []byte) {
	copy(h[56:72], b)
}

// PartitionEntryLBA returns the starting LBA of the partition entry array.
func (h Header) PartitionEntryLBA() uint64 {
	return binary.LittleEndian.Uint64(h[72:80])
}

// PutPartitionEntryLBA sets the starting LBA of the partition entry array.
func (h Header) PutPartitionEntryLBA(v uint64) {
	binary.LittleEndian.PutUint64(h[72:80], v)
}

// NumPartitionEntries returns the number of partition entries.
func (h Header) NumPartitionEntries() uint32 {
	return binary.LittleEndian.Uint32(h[80:84])
}

// PutNumPartitionEntries sets the number of partition entries.
func (h Header) PutNumPartitionEntries(v uint32) {
	binary.LittleEndian.PutUint32(h[80:84], v)
}

// SizeofPartitionEntry returns the size of a single partition entry.
func (h Header) SizeofPartitionEntry() uint32 {
	return binary.LittleEndian.Uint32(h[84:88])
}

// PutSizeofPartitionEntry sets the size of a single partition entry.
func (h Header) PutSizeofPartitionEntry(v uint32) {
	binary.LittleEndian.PutUint32(h[84:88], v)
}

// PartitionEntryArrayCRC32 returns the checksum of the partition entry array.
func (h Header) PartitionEntryArrayCRC32() uint32 {
	return binary.LittleEndian.Uint32(h[88:92])
}

// PutPartitionEntryArrayCRC32 sets the checksum of the partition entry array.
func (h Header) PutPartitionEntryArrayCRC32(v uint32) {
	binary.LittleEndian.PutUint32(h[88:92], v)
}

// CalculateChecksum calculates the checksum of the header.
//
// The checksum covers the HeaderSize bytes of the header with the
// header_crc32 field itself taken as zero.
func (h Header) CalculateChecksum() uint32 {
	b := slices.Clone(h[:HeaderSize])

	b[16] = 0
	b[17] = 0
	b[18] = 0
	b[19] = 0

	return crc32.ChecksumIEEE(b)
}
