package contextmgr

import "github.com/petasbytes/go-agent-context/memory"

// dedupe concatenates seqs, keeping the first occurrence of each (role, text)
// pair.
func dedupe(seqs ...[]memory.Turn) []memory.Turn {
	n := 0
	for _, s := range seqs {
		n += len(s)
	}
	seen := make(map[memory.Turn]struct{}, n)
	out := make([]memory.Turn, 0, n)
	for _, s := range seqs {
		for _, t := range s {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
