// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package descriptor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-gptimage/descriptor"
	"github.com/siderolabs/go-gptimage/gpt"
)

func mustGUID(s string) gpt.GUID {
	return gpt.GUID(uuid.MustParse(s))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	for _, test := range []struct { //nolint:govet
		name string

		document string

		expected      gpt.Descriptor
		expectedError string
	}{
		{
			name: "full document",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "01234567-89ab-cdef-0123-456789abcdef",
				"partitions": [
					{
						"partition_type_guid": "c12a7328-f81f-11d2-ba4b-00a0c93ec93b",
						"unique_partition_guid": "da66737e-1ed4-4ddf-b98c-70cebfe3ada0",
						"starting_lba": 34,
						"ending_lba": 2014,
						"attributes": 4,
						"partition_name": "boot"
					}
				]
			}`,

			expected: gpt.Descriptor{
				BlockSize:      512,
				NumberOfBlocks: 2048,
				DiskGUID:       mustGUID("01234567-89ab-cdef-0123-456789abcdef"),
				Partitions: []gpt.Partition{
					{
						Name:       "boot",
						TypeGUID:   mustGUID("c12a7328-f81f-11d2-ba4b-00a0c93ec93b"),
						UniqueGUID: mustGUID("da66737e-1ed4-4ddf-b98c-70cebfe3ada0"),
						FirstLBA:   34,
						LastLBA:    2014,
						Attributes: 4,
					},
				},
			},
		},
		{
			name: "optional fields omitted",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "00000000-0000-0000-0000-000000000000",
				"partitions": [
					{
						"partition_type_guid": "00000000-0000-0000-0000-000000000000",
						"unique_partition_guid": "00000000-0000-0000-0000-000000000000",
						"starting_lba": 34,
						"ending_lba": 2014
					}
				]
			}`,

			expected: gpt.Descriptor{
				BlockSize:      512,
				NumberOfBlocks: 2048,
				Partitions: []gpt.Partition{
					{FirstLBA: 34, LastLBA: 2014},
				},
			},
		},
		{
			name: "empty partitions array",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "00000000-0000-0000-0000-000000000000",
				"partitions": []
			}`,

			expected: gpt.Descriptor{
				BlockSize:      512,
				NumberOfBlocks: 2048,
				Partitions:     []gpt.Partition{},
			},
		},
		{
			name: "non-canonical GUID",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "{01234567-89ab-cdef-0123-456789abcdef}",
				"partitions": []
			}`,

			expectedError: "disk_guid: not a GUID",
		},
		{
			name: "bad GUID digits",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "0123456x-89ab-cdef-0123-456789abcdef",
				"partitions": []
			}`,

			expectedError: "disk_guid",
		},
		{
			name: "partition name too long",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "00000000-0000-0000-0000-000000000000",
				"partitions": [
					{
						"partition_type_guid": "00000000-0000-0000-0000-000000000000",
						"unique_partition_guid": "00000000-0000-0000-0000-000000000000",
						"starting_lba": 34,
						"ending_lba": 2014,
						"partition_name": "` + strings.Repeat("x", 37) + `"
					}
				]
			}`,

			expectedError: "longer than 36 UTF-16 code units",
		},
		{
			name: "unknown field",

			document: `{
				"block_size": 512,
				"number_of_blocks": 2048,
				"disk_guid": "00000000-0000-0000-0000-000000000000",
				"partitions": [],
				"extra": true
			}`,

			expectedError: "failed to parse descriptor",
		},
		{
			name: "not JSON",

			document: `512 2048`,

			expectedError: "failed to parse descriptor",
		},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			desc, err := descriptor.Load(strings.NewReader(test.document))

			if test.expectedError != "" {
				assert.ErrorContains(t, err, test.expectedError)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, desc)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "descriptor.json")

	require.NoError(t, os.WriteFile(path, []byte(`{
		"block_size": 512,
		"number_of_blocks": 2048,
		"disk_guid": "00000000-0000-0000-0000-000000000000",
		"partitions": [
			{
				"partition_type_guid": "00000000-0000-0000-0000-000000000000",
				"unique_partition_guid": "00000000-0000-0000-0000-000000000000",
				"starting_lba": 34,
				"ending_lba": 2014
			}
		]
	}`), 0o644))

	desc, err := descriptor.LoadFile(path)
	require.NoError(t, err)

	data, err := gpt.Build(desc)
	require.NoError(t, err)

	assert.Len(t, data.Header, 3*512)

	_, err = descriptor.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
