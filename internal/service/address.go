package service

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/ilinovom/fido5011-bot/internal/model"
)

// ErrEmptyDirectory is returned by NormalizeAddress for an empty record list.
var ErrEmptyDirectory = errors.New("empty directory list")

type nodeKey struct {
	primary int
	point   int
}

// less orders keys by primary number; within one primary the node itself
// (point 0) goes before all of its points.
func (k nodeKey) less(o nodeKey) bool {
	if k.primary == o.primary && (k.point == 0) != (o.point == 0) {
		return k.point == 0
	}
	if k.primary != o.primary {
		return k.primary < o.primary
	}
	return k.point < o.point
}

// parseNodeKey extracts (primary, point) from "zone:net/node[.point]".
// Anything it cannot read yields (0, 0).
func parseNodeKey(addr string) nodeKey {
	slash := strings.LastIndexByte(addr, '/')
	if slash < 0 {
		return nodeKey{}
	}
	node, point, hasPoint := strings.Cut(addr[slash+1:], ".")
	primary, err := strconv.Atoi(node)
	if err != nil {
		return nodeKey{}
	}
	k := nodeKey{primary: primary}
	if hasPoint {
		p, err := strconv.Atoi(point)
		if err != nil {
			return nodeKey{}
		}
		k.point = p
	}
	return k
}

// NormalizeAddress renders the records of one owner as
// "Name, addr1, addr2, ...". Addresses are sorted by node and point number,
// points that follow their own node are folded into it and stripPrefix is
// removed from every listed address.
func NormalizeAddress(records []model.DirectoryRecord, stripPrefix string) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyDirectory
	}
	header := records[0].DisplayName

	sorted := make([]model.DirectoryRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := parseNodeKey(sorted[i].Address), parseNodeKey(sorted[j].Address)
		if ki == kj {
			return sorted[i].Address < sorted[j].Address
		}
		return ki.less(kj)
	})

	parts := []string{header}
	prev := ""
	for _, r := range sorted {
		addr := r.Address
		if prev != "" && (addr == prev || strings.HasPrefix(addr, prev+".")) {
			continue
		}
		prev = addr
		if stripPrefix != "" {
			addr = strings.TrimPrefix(addr, stripPrefix)
		}
		parts = append(parts, addr)
	}
	return strings.Join(parts, ", "), nil
}

// ShortAddress keeps the first two comma-separated tokens of a normalized address.
func ShortAddress(addr string) string {
	tokens := strings.SplitN(addr, ",", 3)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, ",")
}
