// Copyright 2025 Magnus Pierre
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

package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"
)

// SharingClient browses and loads tables of a Delta Sharing server.
type SharingClient struct {
	client  delta_sharing.SharingClientV2
	timeout time.Duration
}

// NewSharingClient connects with the profile JSON. Every server call is
// bounded by timeout; zero means no bound beyond the caller's context.
func NewSharingClient(profile string, timeout time.Duration) (*SharingClient, error) {
	if !IsDeltaSharingProfile([]byte(profile)) {
		return nil, fmt.Errorf("%w: missing shareCredentialsVersion, endpoint or bearerToken", ErrInvalidProfile)
	}
	client, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	return &SharingClient{client: client, timeout: timeout}, nil
}

func (c *SharingClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Shares lists the share names.
func (c *SharingClient) Shares(ctx context.Context) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	shares, _, err := c.client.ListShares(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	names := make([]string, len(shares))
	for i, s := range shares {
		names[i] = s.Name
	}
	return names, nil
}

// Tables lists every table of every share.
func (c *SharingClient) Tables(ctx context.Context) ([]delta_sharing.Table, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	// maxConcurrency=0 uses the client default.
	tables, _, err := c.client.ListAllTables_V2(ctx, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	return tables, nil
}

// Files lists the data file ids of table.
func (c *SharingClient) Files(ctx context.Context, table delta_sharing.Table) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.ListFilesInTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", table.Name, err)
	}
	ids := make([]string, 0, len(resp.AddFiles))
	for _, f := range resp.AddFiles {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

// LoadTable downloads one data file of table and builds it with opts.
func (c *SharingClient) LoadTable(ctx context.Context, table delta_sharing.Table, fileID string, opts *QueryOptions) (*Table, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	arrowTable, err := delta_sharing.LoadArrowTable(ctx, c.client, table, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table.Name, err)
	}
	defer arrowTable.Release()
	slog.Info("delta sharing table loaded",
		"share", table.Share, "schema", table.Schema, "table", table.Name,
		"rows", arrowTable.NumRows(), "elapsed", time.Since(start))

	t, err := FromArrow(table.Name, arrowTable, opts)
	if err != nil {
		return nil, err
	}
	t.Metadata["share"] = table.Share
	t.Metadata["schema"] = table.Schema
	t.Metadata["file"] = fileID
	return t, nil
}
