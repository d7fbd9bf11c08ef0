package domain

// CapacityKind - вид емкости парковки. Каждый вид существует в трех вариантах:
// статический <kind>, realtime_<kind> и realtime_free_<kind>.
type CapacityKind string

const (
	CapacityKindTotal      CapacityKind = "capacity"
	CapacityKindDisabled   CapacityKind = "capacity_disabled"
	CapacityKindWoman      CapacityKind = "capacity_woman"
	CapacityKindFamily     CapacityKind = "capacity_family"
	CapacityKindCharging   CapacityKind = "capacity_charging"
	CapacityKindCarsharing CapacityKind = "capacity_carsharing"
	CapacityKindTruck      CapacityKind = "capacity_truck"
	CapacityKindBus        CapacityKind = "capacity_bus"
)

// CapacityKinds - все виды емкости в порядке колонок БД
var CapacityKinds = []CapacityKind{
	CapacityKindTotal,
	CapacityKindDisabled,
	CapacityKindWoman,
	CapacityKindFamily,
	CapacityKindCharging,
	CapacityKindCarsharing,
	CapacityKindTruck,
	CapacityKindBus,
}

// Capacities - набор значений емкости по всем видам. nil означает "не задано".
type Capacities struct {
	Total      *int `json:"capacity,omitempty"`
	Disabled   *int `json:"capacity_disabled,omitempty"`
	Woman      *int `json:"capacity_woman,omitempty"`
	Family     *int `json:"capacity_family,omitempty"`
	Charging   *int `json:"capacity_charging,omitempty"`
	Carsharing *int `json:"capacity_carsharing,omitempty"`
	Truck      *int `json:"capacity_truck,omitempty"`
	Bus        *int `json:"capacity_bus,omitempty"`
}

// Ref возвращает адрес поля для вида kind (используется при сканировании строк БД)
func (c *Capacities) Ref(kind CapacityKind) **int {
	switch kind {
	case CapacityKindTotal:
		return &c.Total
	case CapacityKindDisabled:
		return &c.Disabled
	case CapacityKindWoman:
		return &c.Woman
	case CapacityKindFamily:
		return &c.Family
	case CapacityKindCharging:
		return &c.Charging
	case CapacityKindCarsharing:
		return &c.Carsharing
	case CapacityKindTruck:
		return &c.Truck
	case CapacityKindBus:
		return &c.Bus
	}
	return nil
}

// Get возвращает значение для вида kind
func (c Capacities) Get(kind CapacityKind) *int {
	ref := c.Ref(kind)
	if ref == nil {
		return nil
	}
	return *ref
}

// Set устанавливает значение для вида kind
func (c *Capacities) Set(kind CapacityKind, value *int) {
	if ref := c.Ref(kind); ref != nil {
		*ref = value
	}
}

// Values возвращает значения в порядке CapacityKinds (для INSERT/UPDATE)
func (c Capacities) Values() []interface{} {
	values := make([]interface{}, 0, len(CapacityKinds))
	for _, kind := range CapacityKinds {
		values = append(values, c.Get(kind))
	}
	return values
}

// Equal сравнивает значения по всем видам
func (c Capacities) Equal(other Capacities) bool {
	for _, kind := range CapacityKinds {
		if !intPtrEqual(c.Get(kind), other.Get(kind)) {
			return false
		}
	}
	return true
}

// Clone возвращает глубокую копию
func (c Capacities) Clone() Capacities {
	var out Capacities
	for _, kind := range CapacityKinds {
		if v := c.Get(kind); v != nil {
			value := *v
			out.Set(kind, &value)
		}
	}
	return out
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
