package backup

import "github.com/plantbygpt/plantbygpt/internal/model"

// CollectReferencedKeys returns every object store key referenced by st, de-duplicated,
// in first-seen order: plant covers, event photos, log photos, expense photos, then
// knowledge covers. It performs no I/O.
func CollectReferencedKeys(st *model.ApplicationState) []string {
	if st == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, p := range st.Plants {
		add(p.CoverPhotoKey)
	}
	for _, e := range st.Events {
		for _, k := range e.PhotoKeys {
			add(k)
		}
	}
	for _, l := range st.GeneralLogs {
		for _, k := range l.Photos {
			add(k)
		}
	}
	for _, x := range st.Expenses {
		for _, k := range x.Photos {
			add(k)
		}
	}
	for _, k := range st.Knowledges {
		for _, key := range k.CoverPhotoKeys {
			add(key)
		}
	}
	return keys
}
