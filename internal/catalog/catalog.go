package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"edgarqa/internal/apperr"
)

// manifestFile mirrors the on-disk YAML shape documented in
// SPEC_FULL.md §3.1.
type manifestFile struct {
	Datasets      []Dataset               `yaml:"datasets"`
	SectorQuality map[Sector]QualityBlock `yaml:"sector_quality"`
}

// Catalog is the immutable, process-wide registry of Dataset
// Descriptors loaded once at startup.
type Catalog struct {
	datasets map[string]Dataset
	order    []string
	quality  map[Sector]QualityBlock
}

// Load reads and parses the manifest at path, attaches each dataset's
// Sector Quality Block, and returns an immutable Catalog.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest %s: %v", ErrManifestInvalid, path, err)
	}

	var mf manifestFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("%w: parsing manifest %s: %v", ErrManifestInvalid, path, err)
	}

	c := &Catalog{datasets: make(map[string]Dataset, len(mf.Datasets)), quality: mf.SectorQuality}
	for _, d := range mf.Datasets {
		if d.FileID == "" {
			return nil, fmt.Errorf("%w: dataset with empty file_id", ErrManifestInvalid)
		}
		if q, ok := mf.SectorQuality[d.Sector]; ok {
			d.Quality = q
		}
		c.datasets[d.FileID] = d
		c.order = append(c.order, d.FileID)
	}
	sort.Strings(c.order)
	return c, nil
}

// ListDatasets returns every Dataset Descriptor, in stable order.
func (c *Catalog) ListDatasets() []Dataset {
	out := make([]Dataset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.datasets[id])
	}
	return out
}

// QualityBlocks returns every Sector Quality Block keyed by sector,
// the payload behind the get_data_quality tool.
func (c *Catalog) QualityBlocks() map[Sector]QualityBlock {
	out := make(map[Sector]QualityBlock, len(c.quality))
	for sector, q := range c.quality {
		out[sector] = q
	}
	return out
}

// Schema returns the Dataset Descriptor for file_id, or
// apperr.UnknownDataset with close-name suggestions.
func (c *Catalog) Schema(fileID string) (Dataset, error) {
	if d, ok := c.datasets[fileID]; ok {
		return d, nil
	}
	return Dataset{}, apperr.New(apperr.UnknownDataset, fmt.Sprintf("unknown dataset %q", fileID)).
		WithSuggestions(c.closestFileIDs(fileID, 3)...)
}

// ResolveColumns verifies each requested column exists on the dataset,
// returning apperr.UnknownColumn with the top-k closest names for the
// first offending one.
func (c *Catalog) ResolveColumns(fileID string, requested []string) ([]string, error) {
	d, err := c.Schema(fileID)
	if err != nil {
		return nil, err
	}
	for _, name := range requested {
		if !d.HasColumn(name) {
			return nil, apperr.New(apperr.UnknownColumn, fmt.Sprintf("unknown column %q on dataset %q", name, fileID)).
				WithSuggestions(closestNames(name, d.ColumnNames(), 3)...)
		}
	}
	return requested, nil
}

func (c *Catalog) closestFileIDs(name string, k int) []string {
	return closestNames(name, c.order, k)
}

// closestNames ranks candidates by fuzzy match score against target
// and returns the top k names. Used by the Catalog for dataset/column
// name suggestions; the Entity Resolver ranks place names on its own.
func closestNames(target string, candidates []string, k int) []string {
	matches := fuzzy.Find(target, candidates)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	out := make([]string, 0, k)
	for i := 0; i < len(matches) && i < k; i++ {
		out = append(out, matches[i].Str)
	}
	if len(out) == 0 {
		// fuzzy.Find requires subsequence matches; when nothing matched,
		// fall back to the first k candidates in their given order so
		// callers always get *some* suggestion.
		for _, cand := range candidates {
			if len(out) >= k {
				break
			}
			out = append(out, cand)
		}
	}
	return out
}
