// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gptstructs

import "encoding/binary"

// ProtectiveMBR is a protective MBR block (UEFI 2.8, Section 5.2.3, Table 19).
//
// The slice must be at least MBRSize bytes long. Bytes 0..440 are the boot
// code region, followed by the disk signature, a reserved field, four
// partition records and the 0x55AA boot signature.
type ProtectiveMBR []byte

const (
	mbrPartitionRecordOffset = 446

	// MBRPartitionRecordSize is the size of a single MBR partition record.
	MBRPartitionRecordSize = 16
)

// PutUniqueMBRDiskSignature sets the unique MBR disk signature.
func (m ProtectiveMBR) PutUniqueMBRDiskSignature(v uint32) {
	binary.LittleEndian.PutUint32(m[440:444], v)
}

// PartitionRecord returns the idx-th partition record, idx in 0..3.
func (m ProtectiveMBR) PartitionRecord(idx int) MBRPartitionRecord {
	offset := mbrPartitionRecordOffset + idx*MBRPartitionRecordSize

	return MBRPartitionRecord(m[offset : offset+MBRPartitionRecordSize])
}

// Signature returns the two boot signature bytes.
func (m ProtectiveMBR) Signature() []byte {
	return []byte(m[510:512])
}

// PutSignature sets the boot signature bytes (0x55, 0xAA).
func (m ProtectiveMBR) PutSignature() {
	m[510], m[511] = 0x55, 0xAA
}

// MBRPartitionRecord is a legacy MBR partition record (UEFI 2.8, Table 20).
type MBRPartitionRecord []byte

// PutBootIndicator sets the boot indicator byte.
func (r MBRPartitionRecord) PutBootIndicator(v byte) {
	r[0] = v
}

// PutStartingCHS sets the CHS address of the first sector.
func (r MBRPartitionRecord) PutStartingCHS(chs [3]byte) {
	copy(r[1:4], chs[:])
}

// OSType returns the partition type byte.
func (r MBRPartitionRecord) OSType() byte {
	return r[4]
}

// PutOSType sets the partition type byte.
func (r MBRPartitionRecord) PutOSType(v byte) {
	r[4] = v
}

// PutEndingCHS sets the CHS address of the last sector.
func (r MBRPartitionRecord) PutEndingCHS(chs [3]byte) {
	copy(r[5:8], chs[:])
}

// StartingLBA returns the first LBA of the partition.
func (r MBRPartitionRecord) StartingLBA() uint32 {
	return binary.LittleEndian.Uint32(r[8:12])
}

// PutStartingLBA sets the first LBA of the partition.
func (r MBRPartitionRecord) PutStartingLBA(v uint32) {
	binary.LittleEndian.PutUint32(r[8:12], v)
}

// SizeInLBA returns the partition size in LBAs.
func (r MBRPartitionRecord) SizeInLBA() uint32 {
	return binary.LittleEndian.Uint32(r[12:16])
}

// PutSizeInLBA sets the partition size in LBAs.
func (r MBRPartitionRecord) PutSizeInLBA(v uint32) {
	binary.LittleEndian.PutUint32(r[12:16], v)
}
