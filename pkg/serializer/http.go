// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

var contentTypes = map[Format]string{
	FormatJSON:  "application/json",
	FormatYAML:  "application/yaml",
	FormatTable: "text/plain; charset=utf-8",
}

// ContentType is the HTTP media type of f, or "" for unknown formats.
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Respond renders data in format and writes it with statusCode. JSON is
// compact, one document per response. The body is rendered before any
// header is written, so on error nothing has been sent and the caller can
// still write an error response.
func Respond(ctx context.Context, w http.ResponseWriter, statusCode int, format Format, data any) error {
	var buf bytes.Buffer
	switch {
	case format == FormatJSON:
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case format.IsUnknown():
		return fmt.Errorf("unknown format: %s", format)
	default:
		if err := NewWriter(format, &buf).Serialize(ctx, data); err != nil {
			return err
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("response write failed", "error", err)
	}
	return nil
}

// RespondJSON writes data as JSON. An encoding failure becomes a plain 500.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	if err := Respond(context.Background(), w, statusCode, FormatJSON, data); err != nil {
		slog.Error("json encoding failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
