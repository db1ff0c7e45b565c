package models

// VariationMapping records where a source variation ended up on the target
type VariationMapping struct {
	NewID       int       `json:"newId"`
	NewParentID int       `json:"newParentId"`
	Image       *ImageRef `json:"image,omitempty"`
}

// ProductMapping records where a source product ended up on the target,
// together with the original image list that the importer stripped before
// creation. The image attacher works entirely from this record.
type ProductMapping struct {
	NewID      int                      `json:"newId"`
	OldImages  []ImageRef               `json:"oldImages,omitempty"`
	Variations map[int]VariationMapping `json:"variationMap,omitempty"`
}

// IDMapping is the hand-off contract between the importer and the image
// attacher: old source ids to new target ids for every entity the importer
// touched. It is an explicit value threaded through the stage functions,
// never package-level state.
type IDMapping struct {
	Categories map[int]int            `json:"categories"`
	Products   map[int]ProductMapping `json:"products"`
}

// NewIDMapping returns an empty mapping with all maps initialised
func NewIDMapping() *IDMapping {
	return &IDMapping{
		Categories: make(map[int]int),
		Products:   make(map[int]ProductMapping),
	}
}

// ResolveCategory translates a source category id to its target id
func (m *IDMapping) ResolveCategory(oldID int) (int, bool) {
	newID, ok := m.Categories[oldID]
	return newID, ok
}

// AddProduct records a created product and its deferred image list
func (m *IDMapping) AddProduct(oldID, newID int, oldImages []ImageRef) {
	m.Products[oldID] = ProductMapping{
		NewID:      newID,
		OldImages:  oldImages,
		Variations: make(map[int]VariationMapping),
	}
}

// AddVariation records a created variation under its parent product entry.
// The parent must have been added first; a variation without a mapped parent
// is silently ignored because the importer never creates children before
// their parent succeeded.
func (m *IDMapping) AddVariation(parentOldID, oldID, newID int, image *ImageRef) {
	pm, ok := m.Products[parentOldID]
	if !ok {
		return
	}
	if pm.Variations == nil {
		pm.Variations = make(map[int]VariationMapping)
	}
	pm.Variations[oldID] = VariationMapping{
		NewID:       newID,
		NewParentID: pm.NewID,
		Image:       image,
	}
	m.Products[parentOldID] = pm
}
