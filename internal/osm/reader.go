package osm

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/qedus/osmpbf"
	"github.com/rotisserie/eris"
)

// LoadExtract streams a PBF extract into the resolver. Decoding runs on
// workers goroutines (GOMAXPROCS when zero), but this loop is the single
// writer into the caches. A malformed extract aborts the run.
func LoadExtract(ctx context.Context, path string, workers int, r *Resolver) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "osm: open extract %s", path)
	}
	defer func() { _ = f.Close() }()

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}

	d := osmpbf.NewDecoder(f)
	if err := d.Start(workers); err != nil {
		return eris.Wrap(err, "osm: start decoder")
	}

	for {
		v, err := d.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return eris.Wrap(err, "osm: decode extract")
		}

		switch v := v.(type) {
		case *osmpbf.Node:
			r.AddCoord(v.ID, v.Lon, v.Lat)
			r.AddNode(ctx, v.ID, Tags(v.Tags), v.Lon, v.Lat)
		case *osmpbf.Way:
			r.AddWay(v.ID, Tags(v.Tags), v.NodeIDs)
		case *osmpbf.Relation:
			r.AddRelation(v.ID, Tags(v.Tags), convertMembers(v.Members))
		default:
			return eris.Errorf("osm: unknown element type %T", v)
		}
	}

	r.FlushPOIs(ctx)
	return nil
}

// convertMembers keeps the node and way members of a relation, in order.
// Relation-kind members carry no address data and are dropped.
func convertMembers(members []osmpbf.Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		switch m.Type {
		case osmpbf.NodeType:
			out = append(out, Member{ID: m.ID, Kind: KindNode, Role: m.Role})
		case osmpbf.WayType:
			out = append(out, Member{ID: m.ID, Kind: KindWay, Role: m.Role})
		}
	}
	return out
}
