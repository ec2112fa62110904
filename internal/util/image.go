// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// maxImageBytes caps attachments. The whole image travels inline in the
// request body as base64, so large files would blow up the payload.
const maxImageBytes = 8 << 20 // 8 MB

// EncodeImageDataURI reads an image file and returns it as a data URI
// suitable for an image content part.
func EncodeImageDataURI(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("image %s is %d bytes, limit is %d", path, info.Size(), maxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (detected %s)", path, mime)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
