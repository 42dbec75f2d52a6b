package pagination

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name              string
		page, limit       int
		wantPage, wantLim int
		wantOffset        int
	}{
		{"defaults", 0, 0, 1, DefaultLimit, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"limit capped", 1, 1000, 1, MaxLimit, 0},
		{"negative page", -3, 5, 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.limit)
			if p.Page != tt.wantPage || p.Limit != tt.wantLim || p.Offset != tt.wantOffset {
				t.Errorf("New(%d, %d) = %+v", tt.page, tt.limit, p)
			}
		})
	}
}

func TestGetMeta(t *testing.T) {
	m := GetMeta(New(2, 10), 25)
	if m.TotalPages != 3 || !m.HasNext || !m.HasPrev {
		t.Errorf("unexpected meta: %+v", m)
	}
	m = GetMeta(New(1, 10), 0)
	if m.TotalPages != 0 || m.HasNext || m.HasPrev {
		t.Errorf("unexpected meta for empty result: %+v", m)
	}
}
