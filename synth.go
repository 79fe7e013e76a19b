/*
Copyright © 2024 the HullZone authors.
This file is part of HullZone.

HullZone is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HullZone is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HullZone.  If not, see <http://www.gnu.org/licenses/>.
*/

package hullzone

import (
	"context"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/sirupsen/logrus"
)

// linkFactor scales the buffer radius into the maximum centroid
// distance at which two disks are considered connected.
const linkFactor = 2.5

// A diskNode is one buffered sample point in the clustering graph.
type diskNode struct {
	geom.Polygonal
	center geom.Point
	id     int
}

// synthesizeZones buffers every accepted point into a disk, clusters
// disks whose centers lie within the link distance, and unions each
// cluster into one polygon. Cancellation is checked between cluster
// unions.
func synthesizeZones(ctx context.Context, points []geom.Point, bufferSize float64, lg logrus.FieldLogger) ([]geom.Polygonal, error) {
	linkDistance := linkFactor * bufferSize

	nodes := make([]*diskNode, len(points))
	tree := rtree.NewTree(25, 50)
	for i, p := range points {
		nodes[i] = &diskNode{
			Polygonal: pointDisk(p, bufferSize),
			center:    p,
			id:        i,
		}
		tree.Insert(nodes[i])
	}

	visited := make([]bool, len(nodes))
	var zones []geom.Polygonal
	for i := range nodes {
		if visited[i] {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		cluster := expandCluster(tree, nodes, visited, i, linkDistance)
		z := unionCluster(cluster, lg)
		if z == nil {
			lg.WithField("disks", len(cluster)).Warn("dropping cluster that failed to union")
			continue
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// expandCluster breadth-first collects every unvisited disk reachable
// from nodes[start] through the connectivity predicate.
func expandCluster(tree *rtree.Rtree, nodes []*diskNode, visited []bool, start int, linkDistance float64) []*diskNode {
	visited[start] = true
	cluster := []*diskNode{nodes[start]}
	queue := []*diskNode{nodes[start]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		b := cur.Bounds()
		search := &geom.Bounds{
			Min: geom.Point{X: b.Min.X - linkDistance, Y: b.Min.Y - linkDistance},
			Max: geom.Point{X: b.Max.X + linkDistance, Y: b.Max.Y + linkDistance},
		}
		for _, item := range tree.SearchIntersect(search) {
			next := item.(*diskNode)
			if visited[next.id] {
				continue
			}
			if !connected(cur, next, linkDistance) {
				continue
			}
			visited[next.id] = true
			cluster = append(cluster, next)
			queue = append(queue, next)
		}
	}
	return cluster
}

// connected reports whether two disks belong to the same cluster. The
// centroid-distance test subsumes overlap: two radius-r disks overlap
// only within distance 2r, and the link distance is at least 2r for
// any linkFactor >= 2.
func connected(a, b *diskNode, linkDistance float64) bool {
	return pointDistance(a.center, b.center) <= linkDistance
}

// unionCluster folds the cluster's disks into one polygon. A disk
// whose union fails, or would shrink the accumulated area, is skipped
// rather than fatal to the cluster; nil is returned only when nothing
// survives.
func unionCluster(cluster []*diskNode, lg logrus.FieldLogger) geom.Polygonal {
	var acc geom.Polygonal
	for _, d := range cluster {
		if acc == nil {
			acc = d.Polygonal
			continue
		}
		u, err := polyUnion(acc, d.Polygonal)
		if err != nil || u == nil {
			lg.WithError(err).Debug("skipping disk that failed to union into cluster")
			continue
		}
		// A union never removes area; a smaller result is invalid
		// clipper output.
		if u.Area() < acc.Area() {
			lg.Debug("skipping disk whose union lost area")
			continue
		}
		acc = u
	}
	return acc
}
