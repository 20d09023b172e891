package lifecycle

// RequirementType selects how a requirement's field is checked.
type RequirementType string

const (
	RequirementBoolean  RequirementType = "boolean"
	RequirementCount    RequirementType = "count"
	RequirementApproval RequirementType = "approval"
	RequirementDate     RequirementType = "date"
)

// Snapshot fields read by the engine outside the requirement table.
const (
	FieldBriefCompleted = "briefCompleted"
)

// TransitionRequirement is a single typed condition checked before entering a
// target state. Only Required entries gate the transition.
type TransitionRequirement struct {
	Field    string          `json:"field" yaml:"field"`
	Label    string          `json:"label" yaml:"label"`
	Type     RequirementType `json:"type" yaml:"type"`
	Required bool            `json:"required" yaml:"required"`
}

// IsSatisfiedBy evaluates the requirement against a snapshot.
//
// A date requirement is met by any non-nil value; no parsing, range or
// chronology check is performed.
func (r TransitionRequirement) IsSatisfiedBy(snap Snapshot) bool {
	switch r.Type {
	case RequirementBoolean, RequirementApproval:
		return snap.Truthy(r.Field)
	case RequirementCount:
		n, ok := snap.Number(r.Field)
		return ok && n > 0
	case RequirementDate:
		return snap.Has(r.Field)
	default:
		return false
	}
}

func required(field, label string, typ RequirementType) TransitionRequirement {
	return TransitionRequirement{Field: field, Label: label, Type: typ, Required: true}
}

func optional(field, label string, typ RequirementType) TransitionRequirement {
	return TransitionRequirement{Field: field, Label: label, Type: typ}
}

var requirements = map[State][]TransitionRequirement{
	StateLegalReview: {
		required(FieldBriefCompleted, "Project brief completed", RequirementBoolean),
	},
	StateBudgetApproval: {
		required(FieldBriefCompleted, "Project brief completed", RequirementBoolean),
		required("budgetEstimate", "Budget estimate submitted", RequirementCount),
	},
	StateGreenlit: {
		required(FieldBriefCompleted, "Project brief completed", RequirementBoolean),
		required("producerApproved", "Producer approval", RequirementApproval),
		required("legalApproved", "Legal approval", RequirementApproval),
		required("financeApproved", "Finance approval", RequirementApproval),
		required("executiveApproved", "Executive approval", RequirementApproval),
		required("clientApproved", "Client approval", RequirementApproval),
	},
	StatePreProduction: {
		required("budgetLocked", "Budget locked", RequirementApproval),
		required("shootStartDate", "Shoot start date set", RequirementDate),
		optional("scheduleDrafted", "Schedule drafted", RequirementBoolean),
	},
	StateProduction: {
		required("teamAssigned", "Crew assigned", RequirementCount),
		required("locationsConfirmed", "Locations confirmed", RequirementBoolean),
		optional("callSheetsPublished", "Call sheets published", RequirementCount),
	},
	StatePostProduction: {
		required("principalPhotographyWrapped", "Principal photography wrapped", RequirementBoolean),
		required("footageDelivered", "Footage delivered to post", RequirementCount),
	},
	StateReview: {
		required("roughCutDelivered", "Rough cut delivered", RequirementBoolean),
		optional("reviewDeadline", "Review deadline set", RequirementDate),
	},
	StateDistribution: {
		required("finalCutApproved", "Final cut approved", RequirementApproval),
		required("deliveryDate", "Delivery date set", RequirementDate),
		required("distributionChannels", "Distribution channels selected", RequirementCount),
	},
	StateCompleted: {
		required("deliverablesShipped", "Deliverables shipped", RequirementBoolean),
	},
	StateArchived: {
		required("assetsArchived", "Assets archived", RequirementBoolean),
	},
	StateOnHold: {
		optional("holdReason", "Hold reason recorded", RequirementBoolean),
	},
}

// RequirementsFor returns the requirements attached to entering target. The
// slice is a copy; states without requirements return an empty slice.
func RequirementsFor(target State) []TransitionRequirement {
	reqs := requirements[target]
	out := make([]TransitionRequirement, len(reqs))
	copy(out, reqs)
	return out
}

// TransitionCheck is the structured verdict for a requested transition.
type TransitionCheck struct {
	CanTransition bool `json:"can_transition" yaml:"can_transition"`
	// EdgeDeclared is false when the edge table forbids the move regardless of
	// data. CanTransitionTo always reports true here.
	EdgeDeclared        bool                    `json:"edge_declared" yaml:"edge_declared"`
	MissingRequirements []TransitionRequirement `json:"missing_requirements" yaml:"missing_requirements"`
}

// RequirementFilter reports whether a table requirement is enforced. A nil
// filter enforces every requirement.
type RequirementFilter func(TransitionRequirement) bool

func (f RequirementFilter) enforces(req TransitionRequirement) bool {
	return req.Required && (f == nil || f(req))
}

// CanTransitionTo evaluates every requirement of target against snap and
// lists each failing required entry, in table order.
func CanTransitionTo(target State, snap Snapshot) TransitionCheck {
	return CanTransitionToWith(target, snap, nil)
}

// CanTransitionToWith is CanTransitionTo restricted to the requirements keep
// enforces.
func CanTransitionToWith(target State, snap Snapshot, keep RequirementFilter) TransitionCheck {
	missing := []TransitionRequirement{}
	for _, req := range requirements[target] {
		if !keep.enforces(req) {
			continue
		}
		if !req.IsSatisfiedBy(snap) {
			missing = append(missing, req)
		}
	}
	return TransitionCheck{
		CanTransition:       len(missing) == 0,
		EdgeDeclared:        true,
		MissingRequirements: missing,
	}
}

// CheckTransition combines the edge table with the requirement evaluation. A
// transition is permitted only when both pass.
func CheckTransition(from, to State, snap Snapshot) TransitionCheck {
	return CheckTransitionWith(from, to, snap, nil)
}

// CheckTransitionWith is CheckTransition restricted to the requirements keep
// enforces.
func CheckTransitionWith(from, to State, snap Snapshot, keep RequirementFilter) TransitionCheck {
	check := CanTransitionToWith(to, snap, keep)
	if !IsValidTransition(from, to) {
		check.EdgeDeclared = false
		check.CanTransition = false
	}
	return check
}
