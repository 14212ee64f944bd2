package traces

import (
	"math"
	"sort"
	"strings"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

// Chain is one invocation path through a trace's call graph and how many
// times it was walked end to end.
type Chain struct {
	Services []string
	Count    int
}

func (c Chain) String() string {
	return strings.Join(c.Services, "->")
}

func (c Chain) contains(svc string) bool {
	for _, s := range c.Services {
		if s == svc {
			return true
		}
	}
	return false
}

// Chains splits every trace's call graph into invocation chains and merges
// identical chains across traces. Output is sorted by chain.
func Chains(td *TraceData) []Chain {
	merged := map[string]*Chain{}
	for ti := range td.Data {
		for _, c := range extractChains(td.Data[ti].traceCalls()) {
			key := c.String()
			if m, ok := merged[key]; ok {
				m.Count += c.Count
				continue
			}
			merged[key] = &c
		}
	}

	out := make([]Chain, 0, len(merged))
	for _, c := range merged {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// extractChains walks root-to-leaf paths until every call is used up. Each
// path takes the smallest call count along it and that count is subtracted
// from every edge it crosses, so the chains account for each call once.
func extractChains(calls map[callKey]int) []Chain {
	rem := make(map[callKey]int, len(calls))
	for k, n := range calls {
		if n > 0 {
			rem[k] = n
		}
	}

	var out []Chain
	for len(rem) > 0 {
		start := pickRoot(rem)
		path := []string{start}
		onPath := map[string]bool{start: true}
		n := math.MaxInt
		for {
			tail := path[len(path)-1]
			next := ""
			for _, to := range children(rem, tail) {
				if !onPath[to] {
					next = to
					break
				}
			}
			if next == "" {
				break
			}
			n = min(n, rem[callKey{tail, next}])
			path = append(path, next)
			onPath[next] = true
		}

		for i := 1; i < len(path); i++ {
			k := callKey{path[i-1], path[i]}
			rem[k] -= n
			if rem[k] <= 0 {
				delete(rem, k)
			}
		}
		out = append(out, Chain{Services: path, Count: n})
	}
	return out
}

// pickRoot returns the first caller that nobody calls, or the first caller
// at all when every caller sits on a cycle.
func pickRoot(rem map[callKey]int) string {
	called := map[string]bool{}
	for k := range rem {
		called[k.to] = true
	}
	var roots, callers []string
	for k := range rem {
		callers = append(callers, k.from)
		if !called[k.from] {
			roots = append(roots, k.from)
		}
	}
	if len(roots) > 0 {
		sort.Strings(roots)
		return roots[0]
	}
	sort.Strings(callers)
	return callers[0]
}

func children(rem map[callKey]int, from string) []string {
	var out []string
	for k := range rem {
		if k.from == from {
			out = append(out, k.to)
		}
	}
	sort.Strings(out)
	return out
}

// DepICs scores every ordered pair of services by how often they share an
// invocation chain:
//
//	DepIC(i, j) = N(i,j)/N(i) / (1+Cd(i)) + N(i,j)/N(j) / (1+Cd(j))
//
// N counts chain occurrences containing the given services and Cd is the
// share of all calls that the service makes. A service paired with itself
// scores 0. With no services given, every service seen in the traces is
// scored, in sorted order.
func DepICs(td *TraceData, services []domain.EntityID) []domain.CallRecord {
	calls := map[callKey]int{}
	for ti := range td.Data {
		for k, n := range td.Data[ti].traceCalls() {
			calls[k] += n
		}
	}
	if len(services) == 0 {
		services = seenServices(calls)
	}

	in := make(map[string]bool, len(services))
	for _, s := range services {
		in[string(s)] = true
	}
	total := 0
	made := map[string]int{}
	for k, n := range calls {
		if in[k.from] && in[k.to] {
			total += n
			made[k.from] += n
		}
	}
	cd := func(svc string) float64 {
		if total == 0 {
			return 0
		}
		return float64(made[svc]) / float64(total)
	}

	chains := Chains(td)
	occurrences := func(svcs ...string) int {
		n := 0
		for _, c := range chains {
			all := true
			for _, s := range svcs {
				if !c.contains(s) {
					all = false
					break
				}
			}
			if all {
				n += c.Count
			}
		}
		return n
	}
	share := func(both, one int) float64 {
		if one == 0 {
			return 0
		}
		return float64(both) / float64(one)
	}

	out := make([]domain.CallRecord, 0, len(services)*len(services))
	for _, si := range services {
		for _, sj := range services {
			v := 0.0
			if si != sj {
				i, j := string(si), string(sj)
				both := occurrences(i, j)
				v = share(both, occurrences(i))/(1+cd(i)) + share(both, occurrences(j))/(1+cd(j))
			}
			out = append(out, domain.CallRecord{Source: si, Destination: sj, Weight: v})
		}
	}
	return out
}

func seenServices(calls map[callKey]int) []domain.EntityID {
	set := map[string]struct{}{}
	for k := range calls {
		set[k.from] = struct{}{}
		set[k.to] = struct{}{}
	}
	out := make([]domain.EntityID, 0, len(set))
	for s := range set {
		out = append(out, domain.EntityID(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
