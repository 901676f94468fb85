// Package aggregate holds the single in-memory owned state produced by
// replaying the event log: users, items, purchases, freebies, bills, and
// every derived index (rankings, substring search, balances, freeby
// queues). Nothing outside internal/ledgerevents' Apply methods may
// mutate a *State; everything here is otherwise read-only.
package aggregate

// UserID, ItemID, FreebyID, and PurchaseID are all monotonic counters
// assigned only in Apply (never in Validate), so a rejected event never
// consumes an id (§9).
type (
	UserID      = uint64
	ItemID      = uint64
	FreebyID    = uint64
	PurchaseID  = uint64
)

// User is a kiosk account. Deletion is logical: Deleted is set, the
// record is kept for history.
type User struct {
	UserID         UserID
	Username       string
	ExternalUserID *string
	IsBilled       bool
	Highlight      bool
	Deleted        bool
}

// Item is a purchasable good. Deletion is logical, like User.
type Item struct {
	ItemID    ItemID
	Name      string
	Category  *string
	CostCents int64
	Deleted   bool
}

// PurchaseKind discriminates the Purchase tagged union. Dispatch on
// purchases is by switching on Kind, not by per-kind interface types —
// this keeps replay and serialization mechanical (§9).
type PurchaseKind string

const (
	PurchaseSimple  PurchaseKind = "simple"
	PurchaseSpecial PurchaseKind = "special"
	PurchaseFFA     PurchaseKind = "ffa"
)

// Purchase is the tagged union of SimplePurchase / SpecialPurchase /
// FFAPurchase (§3). Only the fields relevant to Kind are meaningful;
// the rest are zero. The live purchase list is always sorted by TsMs
// (invariant 3).
type Purchase struct {
	Kind       PurchaseKind
	UniqueID   PurchaseID
	TsMs       int64
	ConsumerID UserID // Simple, Special: the consumer. FFA: unused (charged to FreebyDonor).

	// Simple, FFA
	ItemID ItemID

	// Special
	SpecialName string
	SpecialCost *int64 // nil until SetPriceForSpecial

	// FFA
	FreebyID    FreebyID
	FreebyDonor UserID // the donor charged, not ConsumerID
}

// FreebyKind discriminates the Freeby tagged union.
type FreebyKind string

const (
	FreebyFFA      FreebyKind = "ffa"
	FreebyClassic  FreebyKind = "classic"
	FreebyTransfer FreebyKind = "transfer"
)

// Freeby is the tagged union of FFA / Classic / Transfer donation
// instruments (§3, GLOSSARY). A freeby is "left()" exhausted when its
// remaining count or budget hits zero, at which point it moves from an
// open list to UsedUpFreebies (never back, §9).
type Freeby struct {
	Kind      FreebyKind
	ID        FreebyID
	Donor     UserID
	Msg       string
	CreatedTs int64

	// FFA
	AllowedCategories []string
	AllowedItems      []ItemID
	Total             int
	Used              int

	// Classic
	Recipient    UserID // also used by Transfer
	ClassicTotal int
	ClassicUsed  int

	// Transfer
	CentsTotal int64
	CentsUsed  int64
}

// Allows reports whether the freeby (FFA or Classic) covers item,
// either by exact item id or by the item's category.
func (f *Freeby) Allows(item *Item) bool {
	for _, id := range f.AllowedItems {
		if id == item.ItemID {
			return true
		}
	}
	if item.Category == nil {
		return false
	}
	for _, cat := range f.AllowedCategories {
		if cat == *item.Category {
			return true
		}
	}
	return false
}

// Left returns the remaining count (FFA/Classic) or cents (Transfer)
// before the freeby is exhausted.
func (f *Freeby) Left() int64 {
	switch f.Kind {
	case FreebyFFA:
		return int64(f.Total - f.Used)
	case FreebyClassic:
		return int64(f.ClassicTotal - f.ClassicUsed)
	case FreebyTransfer:
		return f.CentsTotal - f.CentsUsed
	default:
		return 0
	}
}

// BillState is the lifecycle of a Bill (§3).
type BillState string

const (
	BillCreated            BillState = "created"
	BillFinalized          BillState = "finalized"
	BillExportedAtLeastOnce BillState = "exported_at_least_once"
)

// UserGroupKind discriminates the UserGroup selector union.
type UserGroupKind string

const (
	GroupAllUsers      UserGroupKind = "all"
	GroupSingleUser    UserGroupKind = "single"
	GroupMultipleUsers UserGroupKind = "multiple"
)

// UserGroup selects a subset of users a Bill covers (§3).
type UserGroup struct {
	Kind UserGroupKind
	ID   UserID   // SingleUser
	IDs  []UserID // MultipleUsers
}

// AllUsers returns the AllUsers selector.
func AllUsers() UserGroup { return UserGroup{Kind: GroupAllUsers} }

// SingleUser returns the SingleUser selector.
func SingleUser(id UserID) UserGroup { return UserGroup{Kind: GroupSingleUser, ID: id} }

// MultipleUsers returns the MultipleUsers selector.
func MultipleUsers(ids []UserID) UserGroup {
	cp := make([]UserID, len(ids))
	copy(cp, ids)
	return UserGroup{Kind: GroupMultipleUsers, IDs: cp}
}

// Matches implements matches_usergroup (§4.4). A nil userID (used for
// unfiltered queries) always matches.
func (g UserGroup) Matches(userID *UserID) bool {
	if userID == nil {
		return true
	}
	switch g.Kind {
	case GroupAllUsers:
		return true
	case GroupSingleUser:
		return g.ID == *userID
	case GroupMultipleUsers:
		for _, id := range g.IDs {
			if id == *userID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Bill is a closed time window over which purchases are settled into an
// immutable export record (§3, GLOSSARY).
type Bill struct {
	TimestampFrom          int64
	TimestampTo            int64
	Users                  UserGroup
	State                  BillState
	Comment                string
	UsersThatWillNotBeBilled []UserID
	FinalizedData          *ExportableBillData // only set once State != Created
}

// PricedSpecial is a finalized SpecialPurchase line item (§4.5 step 1).
type PricedSpecial struct {
	PurchaseID PurchaseID
	Price      int64
	Name       string
}

// PaidFor is a bilateral record inside a finalized bill recording how
// much one user paid for another via freebies (GLOSSARY).
type PaidFor struct {
	CountGiveoutsUsed map[ItemID]int // donor gave consumer a Classic freeby for this item
	BudgetGotten      int64          // consumer received this much via Transfer from this donor
	BudgetGiven       int64          // donor gave this much via Transfer to this consumer
}

// NewPaidFor returns a zero-valued PaidFor with initialized maps.
func NewPaidFor() *PaidFor {
	return &PaidFor{CountGiveoutsUsed: make(map[ItemID]int)}
}

// DayConsumption is one day-index slice of a user's finalized
// consumption within a bill (§4.5): a fixed 86,400,000 ms stride from
// the bill's start, not a calendar day.
type DayConsumption struct {
	SpecialsConsumed   []PricedSpecial
	PersonallyConsumed map[ItemID]int           // items the user paid for themself
	FFAGiveouts        map[ItemID]int           // items this user (as donor) gave away via FFA
	GiveoutsToUser     map[UserID]*PaidFor       // keyed by the other party: consumers this user paid for as donor, or donors that paid for this user
}

// NewDayConsumption returns a zero-valued DayConsumption with
// initialized maps.
func NewDayConsumption() *DayConsumption {
	return &DayConsumption{
		PersonallyConsumed: make(map[ItemID]int),
		FFAGiveouts:        make(map[ItemID]int),
		GiveoutsToUser:     make(map[UserID]*PaidFor),
	}
}

// UserConsumption is one user's finalized consumption within a bill,
// keyed by day index (§4.5 day_index).
type UserConsumption struct {
	PerDay map[int]*DayConsumption
}

// NewUserConsumption returns a zero-valued UserConsumption.
func NewUserConsumption() *UserConsumption {
	return &UserConsumption{PerDay: make(map[int]*DayConsumption)}
}

// ExportableBillData is the immutable, archived snapshot produced by
// FinalizeBill (§3, §4.5): a copy of every user/item referenced, plus
// per-user consumption keyed by day index.
type ExportableBillData struct {
	Users           map[UserID]User
	Items           map[ItemID]Item
	UserConsumption map[UserID]*UserConsumption
}

// NewExportableBillData returns a zero-valued ExportableBillData.
func NewExportableBillData() *ExportableBillData {
	return &ExportableBillData{
		Users:           make(map[UserID]User),
		Items:           make(map[ItemID]Item),
		UserConsumption: make(map[UserID]*UserConsumption),
	}
}
