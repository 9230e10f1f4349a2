package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bitfsorg/revledger-go/revshare"
)

// OwnershipFile is the on-disk ownership table:
//
//	projects:
//	  1:
//	    ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG: 1000
type OwnershipFile struct {
	Projects map[uint64]map[string]uint32 `yaml:"projects" json:"projects"`
}

// LoadOwnership reads an ownership table. A missing file yields an empty table.
func LoadOwnership(path string) (*OwnershipFile, error) {
	file := &OwnershipFile{Projects: make(map[uint64]map[string]uint32)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return nil, fmt.Errorf("read ownership table: %w", err)
	}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("parse ownership table %s: %w", path, err)
	}
	if file.Projects == nil {
		file.Projects = make(map[uint64]map[string]uint32)
	}
	if _, err := file.Lookup(); err != nil {
		return nil, fmt.Errorf("ownership table %s: %w", path, err)
	}
	return file, nil
}

// SaveOwnership writes an ownership table, creating parent directories.
func SaveOwnership(path string, file *OwnershipFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode ownership table: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write ownership table: %w", err)
	}
	return nil
}

// Set records an investor's basis points, removing the entry when bp is 0.
func (f *OwnershipFile) Set(projectID uint64, investor string, bp uint32) error {
	if err := revshare.ValidateBasisPoints(bp); err != nil {
		return err
	}
	project := f.Projects[projectID]
	if bp == 0 {
		delete(project, investor)
		if len(project) == 0 {
			delete(f.Projects, projectID)
		}
		return nil
	}
	if project == nil {
		project = make(map[string]uint32)
		f.Projects[projectID] = project
	}
	project[investor] = bp

	var total uint64
	for _, v := range project {
		total += uint64(v)
	}
	if total > revshare.BasisPointsDenominator {
		delete(project, investor)
		return fmt.Errorf("%w: project %d would total %d basis points",
			revshare.ErrShareConservationViolation, projectID, total)
	}
	return nil
}

// Lookup converts the table into an OwnershipLookup, rejecting projects
// whose investors own more than 100% in total.
func (f *OwnershipFile) Lookup() (*revshare.StaticOwnership, error) {
	o := revshare.NewStaticOwnership()

	projects := make([]uint64, 0, len(f.Projects))
	for id := range f.Projects {
		projects = append(projects, id)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i] < projects[j] })

	for _, id := range projects {
		var total uint64
		for investor, bp := range f.Projects[id] {
			if err := o.Set(id, revshare.Identity(investor), bp); err != nil {
				return nil, fmt.Errorf("project %d investor %s: %w", id, investor, err)
			}
			total += uint64(bp)
		}
		if total > revshare.BasisPointsDenominator {
			return nil, fmt.Errorf("%w: project %d totals %d basis points",
				revshare.ErrShareConservationViolation, id, total)
		}
	}
	return o, nil
}
