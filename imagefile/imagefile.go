// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package imagefile writes synthesized GPT data out as a raw disk image file.
package imagefile

import (
	"fmt"
	"os"

	"github.com/siderolabs/go-gptimage/gpt"
)

// Write creates (or truncates) a raw disk image at path.
//
// The file is sized to block size times number of blocks, with data.Header
// at offset 0 and data.Footer flush against the end of the device. The
// region between the two is left as a hole, so the image is sparse where
// the filesystem supports it.
func Write(path string, desc gpt.Descriptor, data *gpt.Data) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	defer f.Close() //nolint:errcheck

	size := int64(desc.BlockSize * desc.NumberOfBlocks)

	if err = f.Truncate(size); err != nil {
		return fmt.Errorf("failed to resize image: %w", err)
	}

	if _, err = f.WriteAt(data.Header, 0); err != nil {
		return fmt.Errorf("failed to write image header: %w", err)
	}

	if _, err = f.WriteAt(data.Footer, size-int64(len(data.Footer))); err != nil {
		return fmt.Errorf("failed to write image footer: %w", err)
	}

	return f.Close()
}
