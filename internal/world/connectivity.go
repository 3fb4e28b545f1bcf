package world

// ConnectivityMetrics summarizes the shape of the active relationship
// graph viewed undirected.
type ConnectivityMetrics struct {
	TotalEntities      int     `json:"total_entities"`
	ClusterCount       int     `json:"cluster_count"`
	LargestCluster     int     `json:"largest_cluster"`
	AverageClusterSize float64 `json:"average_cluster_size"`
	IsolatedCount      int     `json:"isolated_count"`
	IsolatedRatio      float64 `json:"isolated_ratio"`
	Density            float64 `json:"density"`
}

// Connectivity computes component and density metrics over active
// relationships. Clusters are connected components with at least two
// members; singleton nodes are reported through the isolated counts
// instead. An empty graph yields the zero value, never NaN.
func Connectivity(g *Graph) ConnectivityMetrics {
	entities := g.Entities()
	total := len(entities)
	if total == 0 {
		return ConnectivityMetrics{}
	}

	index := make(map[string]int, total)
	for i, entity := range entities {
		index[entity.ID] = i
	}

	parent := make([]int, total)
	rank := make([]int, total)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rank[ra] < rank[rb] {
			ra, rb = rb, ra
		}
		parent[rb] = ra
		if rank[ra] == rank[rb] {
			rank[ra]++
		}
	}

	active := g.ActiveRelationships()
	linked := make([]bool, total)
	for _, rel := range active {
		si, ok := index[rel.SourceID]
		if !ok {
			continue
		}
		ti, ok := index[rel.TargetID]
		if !ok {
			continue
		}
		union(si, ti)
		linked[si] = true
		linked[ti] = true
	}

	componentSize := make(map[int]int, total)
	isolated := 0
	for i := range entities {
		if !linked[i] {
			isolated++
			continue
		}
		componentSize[find(i)]++
	}

	clusterCount := 0
	largest := 0
	for _, size := range componentSize {
		if size >= 2 {
			clusterCount++
		}
		if size > largest {
			largest = size
		}
	}

	metrics := ConnectivityMetrics{
		TotalEntities:  total,
		ClusterCount:   clusterCount,
		LargestCluster: largest,
		IsolatedCount:  isolated,
		IsolatedRatio:  float64(isolated) / float64(total),
	}

	clustered := total - isolated
	divisor := clusterCount
	if divisor < 1 {
		divisor = 1
	}
	metrics.AverageClusterSize = float64(clustered) / float64(divisor)

	if total >= 2 {
		possible := float64(total) * float64(total-1) / 2
		metrics.Density = float64(len(active)) / possible
	}
	return metrics
}
