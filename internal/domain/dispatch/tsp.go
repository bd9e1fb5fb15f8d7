package dispatch

import "math"

// maxExactTSPNodes bounds the Held-Karp subset DP. Carried-order stop counts
// stay well under this in practice; beyond it the solver falls back to
// nearest-neighbour construction improved by 2-opt.
const maxExactTSPNodes = 12

// SolveOpenTSP returns a visiting order over the points of the distance
// matrix, starting at index 0 and not returning to it (an open tour). The
// result always begins with 0.
func SolveOpenTSP(dist [][]float64) []int {
	n := len(dist)
	if n <= 1 {
		seq := make([]int, n)
		return seq
	}
	if n <= maxExactTSPNodes {
		return solveOpenTSPExact(dist)
	}
	return twoOpt(dist, nearestNeighbourPath(dist))
}

// solveOpenTSPExact is Held-Karp over subsets of the non-root points:
// dp[mask][j] is the cheapest path from 0 through mask ending at j.
func solveOpenTSPExact(dist [][]float64) []int {
	n := len(dist)
	m := n - 1 // points 1..n-1
	size := 1 << m

	dp := make([][]float64, size)
	parent := make([][]int, size)
	for mask := 0; mask < size; mask++ {
		dp[mask] = make([]float64, m)
		parent[mask] = make([]int, m)
		for j := range dp[mask] {
			dp[mask][j] = math.Inf(1)
			parent[mask][j] = -1
		}
	}
	for j := 0; j < m; j++ {
		dp[1<<j][j] = dist[0][j+1]
	}

	for mask := 1; mask < size; mask++ {
		for j := 0; j < m; j++ {
			if mask&(1<<j) == 0 || math.IsInf(dp[mask][j], 1) {
				continue
			}
			for k := 0; k < m; k++ {
				if mask&(1<<k) != 0 {
					continue
				}
				next := mask | 1<<k
				cost := dp[mask][j] + dist[j+1][k+1]
				if cost < dp[next][k] {
					dp[next][k] = cost
					parent[next][k] = j
				}
			}
		}
	}

	full := size - 1
	best := -1
	bestCost := math.Inf(1)
	for j := 0; j < m; j++ {
		if dp[full][j] < bestCost {
			bestCost = dp[full][j]
			best = j
		}
	}

	seq := make([]int, 0, n)
	mask := full
	for j := best; j != -1; {
		seq = append(seq, j+1)
		prev := parent[mask][j]
		mask ^= 1 << j
		j = prev
	}
	seq = append(seq, 0)
	reverse(seq)
	return seq
}

func nearestNeighbourPath(dist [][]float64) []int {
	n := len(dist)
	visited := make([]bool, n)
	seq := make([]int, 0, n)
	current := 0
	visited[0] = true
	seq = append(seq, 0)
	for len(seq) < n {
		next := -1
		nextDist := math.Inf(1)
		for j := 0; j < n; j++ {
			if !visited[j] && dist[current][j] < nextDist {
				nextDist = dist[current][j]
				next = j
			}
		}
		visited[next] = true
		seq = append(seq, next)
		current = next
	}
	return seq
}

// twoOpt improves an open path by segment reversal; the start stays fixed.
func twoOpt(dist [][]float64, seq []int) []int {
	n := len(seq)
	improved := true
	for improved {
		improved = false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				delta := dist[seq[i-1]][seq[j]] - dist[seq[i-1]][seq[i]]
				if j+1 < n {
					delta += dist[seq[i]][seq[j+1]] - dist[seq[j]][seq[j+1]]
				}
				if delta < -1e-12 {
					reverseSegment(seq, i, j)
					improved = true
				}
			}
		}
	}
	return seq
}

func reverseSegment(seq []int, i, j int) {
	for i < j {
		seq[i], seq[j] = seq[j], seq[i]
		i++
		j--
	}
}

func reverse(seq []int) {
	reverseSegment(seq, 0, len(seq)-1)
}
