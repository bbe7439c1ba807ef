package model

// PlantIndex returns the position of the plant with the given id, or -1.
func (s *ApplicationState) PlantIndex(id string) int {
	for i := range s.Plants {
		if s.Plants[i].ID == id {
			return i
		}
	}
	return -1
}

// EventIndex returns the position of the event with the given id, or -1.
func (s *ApplicationState) EventIndex(id string) int {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// LogIndex returns the position of the log with the given id, or -1.
func (s *ApplicationState) LogIndex(id string) int {
	for i := range s.GeneralLogs {
		if s.GeneralLogs[i].ID == id {
			return i
		}
	}
	return -1
}

// ExpenseIndex returns the position of the expense with the given id, or -1.
func (s *ApplicationState) ExpenseIndex(id string) int {
	for i := range s.Expenses {
		if s.Expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// KnowledgeIndex returns the position of the knowledge entry with the given id, or -1.
func (s *ApplicationState) KnowledgeIndex(id string) int {
	for i := range s.Knowledges {
		if s.Knowledges[i].ID == id {
			return i
		}
	}
	return -1
}

// HasLocation reports whether name is one of the configured locations.
func (s *ApplicationState) HasLocation(name string) bool {
	for _, l := range s.Locations {
		if l == name {
			return true
		}
	}
	return false
}
