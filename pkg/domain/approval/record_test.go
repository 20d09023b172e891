package approval_test

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
)

func TestRecord_RolesForIsCaseInsensitive(t *testing.T) {
	rec := approval.Record{
		approval.RoleProducer: {Contact: "Pat@Studio.test"},
		approval.RoleClient:   {Contact: "pat@studio.test"},
		approval.RoleLegal:    {Contact: "lee@studio.test"},
	}

	got := rec.RolesFor("PAT@studio.TEST")
	want := []approval.Role{approval.RoleProducer, approval.RoleClient}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RolesFor = %v, want %v", got, want)
	}
	if got := rec.RolesFor(""); got != nil {
		t.Errorf("RolesFor(\"\") = %v, want nil", got)
	}
}

func TestRecord_SetApprovedKeepsContact(t *testing.T) {
	rec := approval.Record{}
	rec.Assign(approval.RoleFinance, "  fin@studio.test ")
	rec.SetApproved(approval.RoleFinance, true)

	if got := rec.Contact(approval.RoleFinance); got != "fin@studio.test" {
		t.Errorf("contact = %q", got)
	}
	if !rec.Approved(approval.RoleFinance) {
		t.Error("finance should be approved")
	}

	rec.Assign(approval.RoleFinance, "new@studio.test")
	if !rec.Approved(approval.RoleFinance) {
		t.Error("reassigning must keep the sign-off")
	}
}

func TestRecord_Flags(t *testing.T) {
	rec := approval.Record{approval.RoleLegal: {Approved: true}}
	flags := rec.Flags()

	if len(flags) != 5 {
		t.Fatalf("flags = %v, want 5 entries", flags)
	}
	if flags["legalApproved"] != true {
		t.Error("legalApproved should be true")
	}
	if flags["clientApproved"] != false {
		t.Error("clientApproved should be false")
	}
}

func TestParseRoles(t *testing.T) {
	roles, err := approval.ParseRoles([]string{"legal", "client"})
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 2 || roles[0] != approval.RoleLegal {
		t.Errorf("roles = %v", roles)
	}

	if _, err := approval.ParseRoles([]string{"legal", "legal"}); err == nil {
		t.Error("expected duplicate error")
	}
	if _, err := approval.ParseRoles([]string{"accountant"}); err == nil {
		t.Error("expected invalid role error")
	}
}
