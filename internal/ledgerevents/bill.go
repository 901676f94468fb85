package ledgerevents

import (
	"sort"

	"github.com/n3phtys/rustixbl/internal/aggregate"
)

// dayMs is the fixed day-index stride (§4.5, §9 open question: no
// calendar/DST correction).
const dayMs int64 = 1000 * 3600 * 24

func dayIndex(from, ts int64) int {
	return int((ts - from) / dayMs)
}

// CreateBill opens a new Bill in state Created over [From,To) covering
// Users (§4.4).
type CreateBill struct {
	From    int64
	To      int64
	Users   aggregate.UserGroup
	Comment string
}

func (e *CreateBill) Validate(s *aggregate.State) bool {
	lo, hi := s.FindPurchaseIndices(e.From, e.To)
	if hi <= lo {
		return false
	}
	idx, _ := s.GetBill(e.From, e.To)
	return idx < 0
}

func (e *CreateBill) Apply(s *aggregate.State) {
	s.Bills = append(s.Bills, aggregate.Bill{
		TimestampFrom: e.From,
		TimestampTo:   e.To,
		Users:         e.Users,
		State:         aggregate.BillCreated,
		Comment:       e.Comment,
	})
}

// UpdateBill overwrites the mutable fields of a still-Created bill
// (§4.4).
type UpdateBill struct {
	From     int64
	To       int64
	Comment  *string
	Users    *aggregate.UserGroup
	Excluded []aggregate.UserID
}

func (e *UpdateBill) Validate(s *aggregate.State) bool {
	idx, b := s.GetBill(e.From, e.To)
	return idx >= 0 && b.State == aggregate.BillCreated
}

func (e *UpdateBill) Apply(s *aggregate.State) {
	idx, _ := s.GetBill(e.From, e.To)
	if e.Comment != nil {
		s.Bills[idx].Comment = *e.Comment
	}
	if e.Users != nil {
		s.Bills[idx].Users = *e.Users
	}
	if e.Excluded != nil {
		s.Bills[idx].UsersThatWillNotBeBilled = append([]aggregate.UserID(nil), e.Excluded...)
	}
}

// DeleteUnfinishedBill removes a still-Created bill (§4.4).
type DeleteUnfinishedBill struct {
	From int64
	To   int64
}

func (e *DeleteUnfinishedBill) Validate(s *aggregate.State) bool {
	idx, b := s.GetBill(e.From, e.To)
	return idx >= 0 && b.State == aggregate.BillCreated
}

func (e *DeleteUnfinishedBill) Apply(s *aggregate.State) {
	idx, _ := s.GetBill(e.From, e.To)
	s.Bills = append(s.Bills[:idx:idx], s.Bills[idx+1:]...)
}

// ExportBill marks a finalized bill as exported at least once (§4.4).
type ExportBill struct {
	From int64
	To   int64
}

func (e *ExportBill) Validate(s *aggregate.State) bool {
	idx, b := s.GetBill(e.From, e.To)
	if idx < 0 {
		return false
	}
	return b.State == aggregate.BillFinalized || b.State == aggregate.BillExportedAtLeastOnce
}

func (e *ExportBill) Apply(s *aggregate.State) {
	idx, _ := s.GetBill(e.From, e.To)
	s.Bills[idx].State = aggregate.BillExportedAtLeastOnce
}

// FinalizeBill runs the bill finalization algorithm (§4.5) over every
// live purchase in [From,To) matching the bill's user selector, then
// removes those purchases from the live list and transitions the bill
// to Finalized.
type FinalizeBill struct {
	From int64
	To   int64
}

func (e *FinalizeBill) Validate(s *aggregate.State) bool {
	idx, b := s.GetBill(e.From, e.To)
	if idx < 0 || b.State != aggregate.BillCreated {
		return false
	}
	if len(s.UnresolvedUsersToBill(e.From, e.To)) != 0 {
		return false
	}
	if len(s.UnpricedSpecialsToBill(e.From, e.To)) != 0 {
		return false
	}
	return true
}

func userConsumptionFor(data *aggregate.ExportableBillData, user aggregate.UserID) *aggregate.UserConsumption {
	uc, ok := data.UserConsumption[user]
	if !ok {
		uc = aggregate.NewUserConsumption()
		data.UserConsumption[user] = uc
	}
	return uc
}

func dayFor(uc *aggregate.UserConsumption, day int) *aggregate.DayConsumption {
	dc, ok := uc.PerDay[day]
	if !ok {
		dc = aggregate.NewDayConsumption()
		uc.PerDay[day] = dc
	}
	return dc
}

func paidForFor(dc *aggregate.DayConsumption, donor aggregate.UserID) *aggregate.PaidFor {
	pf, ok := dc.GiveoutsToUser[donor]
	if !ok {
		pf = aggregate.NewPaidFor()
		dc.GiveoutsToUser[donor] = pf
	}
	return pf
}

// findOpenClassicFreeby returns the first open freeby in
// s.OpenFreebies[consumer] that allows item, per §4.5 step 2.
func findOpenClassicFreeby(s *aggregate.State, consumer aggregate.UserID, item *aggregate.Item) *aggregate.Freeby {
	for _, f := range s.OpenFreebies[consumer] {
		if f.Kind == aggregate.FreebyClassic && f.Allows(item) {
			return f
		}
	}
	return nil
}

// findOpenTransferFreeby returns the first open Transfer freeby in
// s.OpenFreebies[consumer] that still has budget left and covers item. A
// Transfer with no allowed items and no allowed categories covers every
// item; otherwise it covers the items its lists allow.
func findOpenTransferFreeby(s *aggregate.State, consumer aggregate.UserID, item *aggregate.Item) *aggregate.Freeby {
	for _, f := range s.OpenFreebies[consumer] {
		unrestricted := len(f.AllowedItems) == 0 && len(f.AllowedCategories) == 0
		if f.Kind == aggregate.FreebyTransfer && f.Left() > 0 && (unrestricted || f.Allows(item)) {
			return f
		}
	}
	return nil
}

func (e *FinalizeBill) Apply(s *aggregate.State) {
	idx, b := s.GetBill(e.From, e.To)
	data := aggregate.NewExportableBillData()

	lo, hi := s.FindPurchaseIndices(e.From, e.To)
	var toRemove []int
	for i := lo; i < hi; i++ {
		p := s.Purchases[i]

		// FFA purchases have no billed consumer; they are matched and
		// filed under the donor instead, per §4.5 step 3.
		matchID := p.ConsumerID
		if p.Kind == aggregate.PurchaseFFA {
			matchID = p.FreebyDonor
		}
		if !b.Users.Matches(&matchID) {
			continue
		}
		toRemove = append(toRemove, i)

		switch p.Kind {
		case aggregate.PurchaseSpecial:
			uc := userConsumptionFor(data, p.ConsumerID)
			dc := dayFor(uc, dayIndex(e.From, p.TsMs))
			price := int64(0)
			if p.SpecialCost != nil {
				price = *p.SpecialCost
			}
			dc.SpecialsConsumed = append(dc.SpecialsConsumed, aggregate.PricedSpecial{
				PurchaseID: p.UniqueID,
				Price:      price,
				Name:       p.SpecialName,
			})

		case aggregate.PurchaseSimple:
			item := s.Items[p.ItemID]
			uc := userConsumptionFor(data, p.ConsumerID)
			dc := dayFor(uc, dayIndex(e.From, p.TsMs))

			uk := s.UserKeyAt(p.ConsumerID)
			ik := s.ItemKeyAt(p.ItemID)
			s.AddBalance(uk, ik, -item.CostCents, -1)

			if classic := findOpenClassicFreeby(s, p.ConsumerID, &item); classic != nil {
				donorDay := dayFor(userConsumptionFor(data, classic.Donor), dayIndex(e.From, p.TsMs))
				donorPf := paidForFor(donorDay, p.ConsumerID)
				donorPf.CountGiveoutsUsed[p.ItemID]++
				classic.ClassicUsed++
				if classic.Left() <= 0 {
					s.RemoveOpenFreebyFromRecipient(p.ConsumerID, classic)
					s.InsertFreebyUsedUpSorted(classic)
				}
				continue
			}

			dc.PersonallyConsumed[p.ItemID]++

			if transfer := findOpenTransferFreeby(s, p.ConsumerID, &item); transfer != nil {
				taken := transfer.Left()
				if item.CostCents < taken {
					taken = item.CostCents
				}
				transfer.CentsUsed += taken

				consumerPf := paidForFor(dc, transfer.Donor)
				consumerPf.BudgetGotten += taken

				donorDay := dayFor(userConsumptionFor(data, transfer.Donor), dayIndex(e.From, p.TsMs))
				donorPf := paidForFor(donorDay, p.ConsumerID)
				donorPf.BudgetGiven += taken

				if transfer.Left() <= 0 {
					s.RemoveOpenFreebyFromRecipient(p.ConsumerID, transfer)
					s.InsertFreebyUsedUpSorted(transfer)
				}
			}

		case aggregate.PurchaseFFA:
			item := s.Items[p.ItemID]
			donorDay := dayFor(userConsumptionFor(data, p.FreebyDonor), dayIndex(e.From, p.TsMs))
			donorDay.FFAGiveouts[p.ItemID]++

			uk := s.UserKeyAt(p.FreebyDonor)
			ik := s.ItemKeyAt(p.ItemID)
			s.AddBalance(uk, ik, -item.CostCents, -1)
		}
	}

	for id := range data.UserConsumption {
		if u, ok := s.GetUser(id); ok {
			data.Users[id] = u
		}
	}
	for _, uc := range data.UserConsumption {
		for _, dc := range uc.PerDay {
			for itemID := range dc.PersonallyConsumed {
				if it, ok := s.GetItem(itemID); ok {
					data.Items[itemID] = it
				}
			}
			for itemID := range dc.FFAGiveouts {
				if it, ok := s.GetItem(itemID); ok {
					data.Items[itemID] = it
				}
			}
			for _, pf := range dc.GiveoutsToUser {
				for itemID := range pf.CountGiveoutsUsed {
					if it, ok := s.GetItem(itemID); ok {
						data.Items[itemID] = it
					}
				}
			}
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(toRemove)))
	for _, i := range toRemove {
		s.Purchases = append(s.Purchases[:i], s.Purchases[i+1:]...)
	}

	s.Bills[idx].State = aggregate.BillFinalized
	s.Bills[idx].FinalizedData = data
}
