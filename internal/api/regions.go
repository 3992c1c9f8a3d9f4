package api

import (
	"context"
	"fmt"
	"net/http"

	"order-desk/internal/core"
)

// ListRegions returns every region with its warehouses.
func (c *Client) ListRegions(ctx context.Context, sess core.Session) ([]core.Region, error) {
	var regions []core.Region
	if err := c.doRequest(ctx, sess, http.MethodGet, "/regions", nil, nil, &regions); err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return regions, nil
}

// GetRegion returns one region with its warehouses.
func (c *Client) GetRegion(ctx context.Context, sess core.Session, regionID int) (*core.Region, error) {
	var r core.Region
	if err := c.doRequest(ctx, sess, http.MethodGet, fmt.Sprintf("/regions/%d", regionID), nil, nil, &r); err != nil {
		return nil, fmt.Errorf("failed to fetch region %d: %w", regionID, err)
	}
	return &r, nil
}
