package services

import (
	"sync"
	"testing"

	"kindred/internal/models"
	"kindred/internal/realtime"
	"kindred/internal/testutil"
)

func TestCreateFamily(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		user := testutil.CreateTestUser(t, db)

		family, err := svc.CreateFamily(user.ID, "Smiths")
		testutil.AssertNoError(t, err)

		if family.Name != "Smiths" {
			t.Errorf("expected name Smiths, got %s", family.Name)
		}
		if len(family.RoomCode) != 6 {
			t.Errorf("expected 6-char room code, got %q", family.RoomCode)
		}
		if family.CreatorID != user.ID {
			t.Errorf("expected creator %s, got %s", user.ID, family.CreatorID)
		}

		var member models.FamilyMember
		err = db.Where("family_id = ? AND user_id = ?", family.ID, user.ID).First(&member).Error
		testutil.AssertNoError(t, err)
		if member.Role != models.FamilyRoleCreator {
			t.Errorf("expected creator role, got %s", member.Role)
		}
		if member.Status != models.StatusAccepted {
			t.Errorf("expected accepted status, got %s", member.Status)
		}
		if member.Permission != models.PermissionViewEdit {
			t.Errorf("expected view_edit permission, got %s", member.Permission)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateFamily(user.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestJoinFamily(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		joiner := testutil.CreateTestUser(t, db)

		member, err := svc.JoinFamily(joiner.ID, family.RoomCode, models.PermissionViewEdit)
		testutil.AssertNoError(t, err)

		if member.Status != models.StatusPending {
			t.Errorf("expected pending status, got %s", member.Status)
		}
		if member.RequestedPermission != models.PermissionViewEdit {
			t.Errorf("expected requested view_edit, got %s", member.RequestedPermission)
		}
		if member.Role != models.FamilyRoleMember {
			t.Errorf("expected member role, got %s", member.Role)
		}
		if !notifier.hasUserEvent(creator.ID, realtime.EventJoinRequest) {
			t.Error("expected join-request notification to the creator")
		}
	})

	t.Run("case_insensitive_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		joiner := testutil.CreateTestUser(t, db)

		lower := ""
		for _, r := range family.RoomCode {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			lower += string(r)
		}
		_, err := svc.JoinFamily(joiner.ID, lower, models.PermissionViewOnly)
		testutil.AssertNoError(t, err)
	})

	t.Run("unknown_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.JoinFamily(user.ID, "ZZZZZZ", models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "ROOM_CODE_NOT_FOUND")
	})

	t.Run("already_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestMember(t, db, family.ID, user.ID, models.PermissionViewOnly)

		_, err := svc.JoinFamily(user.ID, family.RoomCode, models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "ALREADY_MEMBER")
	})

	t.Run("request_pending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestPendingMember(t, db, family.ID, user.ID)

		_, err := svc.JoinFamily(user.ID, family.RoomCode, models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "REQUEST_PENDING")
	})

	t.Run("rejected_can_reapply", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)

		rejected := testutil.CreateTestPendingMember(t, db, family.ID, user.ID)
		if err := db.Model(rejected).Update("status", models.StatusRejected).Error; err != nil {
			t.Fatalf("failed to mark rejected: %v", err)
		}

		member, err := svc.JoinFamily(user.ID, family.RoomCode, models.PermissionViewOnly)
		testutil.AssertNoError(t, err)

		// Rejected rows are history; the new request is a fresh row.
		if member.ID == rejected.ID {
			t.Error("expected a new membership row, got the rejected one reused")
		}

		var count int64
		db.Model(&models.FamilyMember{}).
			Where("family_id = ? AND user_id = ?", family.ID, user.ID).
			Count(&count)
		if count != 2 {
			t.Errorf("expected 2 membership rows, got %d", count)
		}
	})
}

func TestAcceptRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		request := testutil.CreateTestPendingMember(t, db, family.ID, user.ID)

		// Granted permission overrides the requested one.
		member, err := svc.AcceptRequest(creator.ID, request.ID, models.PermissionViewEdit)
		testutil.AssertNoError(t, err)

		if member.Status != models.StatusAccepted {
			t.Errorf("expected accepted status, got %s", member.Status)
		}
		if member.Permission != models.PermissionViewEdit {
			t.Errorf("expected granted view_edit, got %s", member.Permission)
		}
		if member.IsSharingTransactions {
			t.Error("expected sharing to default to false")
		}
		if !notifier.hasUserEvent(user.ID, realtime.EventRequestAccepted) {
			t.Error("expected request-accepted notification to the requester")
		}
		if !notifier.hasFamilyEvent(family.ID, realtime.EventMemberJoined) {
			t.Error("expected member-joined broadcast to the family")
		}
	})

	t.Run("not_creator", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestMember(t, db, family.ID, other.ID, models.PermissionViewEdit)
		applicant := testutil.CreateTestUser(t, db)
		request := testutil.CreateTestPendingMember(t, db, family.ID, applicant.ID)

		_, err := svc.AcceptRequest(other.ID, request.ID, models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "CREATOR_ONLY")
	})

	t.Run("already_resolved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		request := testutil.CreateTestPendingMember(t, db, family.ID, user.ID)

		_, err := svc.AcceptRequest(creator.ID, request.ID, models.PermissionViewOnly)
		testutil.AssertNoError(t, err)

		// Second resolution of the same request loses the race.
		_, err = svc.RejectRequest(creator.ID, request.ID)
		testutil.AssertAppError(t, err, "REQUEST_RESOLVED")

		var member models.FamilyMember
		db.First(&member, "id = ?", request.ID)
		if member.Status != models.StatusAccepted {
			t.Errorf("expected accept to stick, got %s", member.Status)
		}
	})

	t.Run("unknown_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		testutil.CreateTestFamily(t, db, creator.ID)

		_, err := svc.AcceptRequest(creator.ID, "0198b2f0-0000-7000-8000-000000000000", models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "MEMBER_NOT_FOUND")
	})

	t.Run("concurrent_accept_and_reject", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		request := testutil.CreateTestPendingMember(t, db, family.ID, user.ID)

		var wg sync.WaitGroup
		var acceptErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = svc.AcceptRequest(creator.ID, request.ID, models.PermissionViewOnly)
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = svc.RejectRequest(creator.ID, request.ID)
		}()
		wg.Wait()

		// The conditional update on status=pending lets exactly one
		// resolution through, whichever order the transactions commit in.
		if (acceptErr == nil) == (rejectErr == nil) {
			t.Fatalf("expected exactly one winner, got acceptErr=%v rejectErr=%v", acceptErr, rejectErr)
		}
		if acceptErr != nil {
			testutil.AssertAppError(t, acceptErr, "REQUEST_RESOLVED")
		}
		if rejectErr != nil {
			testutil.AssertAppError(t, rejectErr, "REQUEST_RESOLVED")
		}

		var member models.FamilyMember
		db.First(&member, "id = ?", request.ID)
		if acceptErr == nil {
			if member.Status != models.StatusAccepted {
				t.Errorf("accept won but status is %s", member.Status)
			}
			if !notifier.hasFamilyEvent(family.ID, realtime.EventMemberJoined) {
				t.Error("expected member-joined broadcast from the winning accept")
			}
		} else {
			if member.Status != models.StatusRejected {
				t.Errorf("reject won but status is %s", member.Status)
			}
			if len(notifier.familyEventTypes(family.ID)) != 0 {
				t.Error("expected no family broadcast when reject wins")
			}
		}
	})
}

func TestRejectRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		request := testutil.CreateTestPendingMember(t, db, family.ID, user.ID)

		member, err := svc.RejectRequest(creator.ID, request.ID)
		testutil.AssertNoError(t, err)

		if member.Status != models.StatusRejected {
			t.Errorf("expected rejected status, got %s", member.Status)
		}
		if !notifier.hasUserEvent(user.ID, realtime.EventRequestRejected) {
			t.Error("expected request-rejected notification to the requester")
		}
		// Rejection is private to the requester.
		if len(notifier.familyEventTypes(family.ID)) != 0 {
			t.Error("expected no family broadcast on rejection")
		}
	})
}

func TestUpdateMemberPermissions(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestMember(t, db, family.ID, user.ID, models.PermissionViewOnly)

		updated, err := svc.UpdateMemberPermissions(creator.ID, member.ID, models.PermissionViewEdit)
		testutil.AssertNoError(t, err)

		var stored models.FamilyMember
		db.First(&stored, "id = ?", updated.ID)
		if stored.Permission != models.PermissionViewEdit {
			t.Errorf("expected view_edit, got %s", stored.Permission)
		}
		if !notifier.hasUserEvent(user.ID, realtime.EventPermissionChanged) {
			t.Error("expected permission-changed notification to the member")
		}
		if !notifier.hasFamilyEvent(family.ID, realtime.EventMemberUpdated) {
			t.Error("expected member-updated broadcast")
		}
	})

	t.Run("creator_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)

		var creatorMembership models.FamilyMember
		db.Where("family_id = ? AND user_id = ?", family.ID, creator.ID).First(&creatorMembership)

		_, err := svc.UpdateMemberPermissions(creator.ID, creatorMembership.ID, models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "CREATOR_IMMUTABLE")
	})

	t.Run("not_creator", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		a := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestUser(t, db)
		memberA := testutil.CreateTestMember(t, db, family.ID, a.ID, models.PermissionViewEdit)
		testutil.CreateTestMember(t, db, family.ID, b.ID, models.PermissionViewEdit)

		_, err := svc.UpdateMemberPermissions(b.ID, memberA.ID, models.PermissionViewOnly)
		testutil.AssertAppError(t, err, "CREATOR_ONLY")
	})
}

func TestRemoveMember(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestMember(t, db, family.ID, user.ID, models.PermissionViewEdit)

		err := svc.RemoveMember(creator.ID, member.ID)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.FamilyMember{}).Where("id = ?", member.ID).Count(&count)
		if count != 0 {
			t.Error("expected membership row to be deleted")
		}
		if !notifier.hasUserEvent(user.ID, realtime.EventRemoved) {
			t.Error("expected removed notification to the ex-member")
		}
		if !notifier.hasFamilyEvent(family.ID, realtime.EventMemberLeft) {
			t.Error("expected member-left broadcast")
		}
		if len(notifier.evictions) != 1 || notifier.evictions[0] != user.ID+":"+family.ID {
			t.Errorf("expected eviction of %s from %s, got %v", user.ID, family.ID, notifier.evictions)
		}
	})

	t.Run("creator_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)

		var creatorMembership models.FamilyMember
		db.Where("family_id = ? AND user_id = ?", family.ID, creator.ID).First(&creatorMembership)

		err := svc.RemoveMember(creator.ID, creatorMembership.ID)
		testutil.AssertAppError(t, err, "CREATOR_IMMUTABLE")
	})
}

func TestLeaveFamily(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestMember(t, db, family.ID, user.ID, models.PermissionViewEdit)

		err := svc.LeaveFamily(user.ID, family.ID)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.FamilyMember{}).Where("id = ?", member.ID).Count(&count)
		if count != 0 {
			t.Error("expected membership row to be deleted")
		}
		if !notifier.hasFamilyEvent(family.ID, realtime.EventMemberLeft) {
			t.Error("expected member-left broadcast")
		}

		// Leaving is irreversible; the user must rejoin by room code.
		_, err = svc.SetTransactionSharing(user.ID, family.ID, true)
		testutil.AssertAppError(t, err, "NOT_FAMILY_MEMBER")
	})

	t.Run("creator_cannot_leave", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)

		err := svc.LeaveFamily(creator.ID, family.ID)
		testutil.AssertAppError(t, err, "CREATOR_CANNOT_LEAVE")
	})

	t.Run("not_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		stranger := testutil.CreateTestUser(t, db)

		err := svc.LeaveFamily(stranger.ID, family.ID)
		testutil.AssertAppError(t, err, "NOT_FAMILY_MEMBER")
	})
}

func TestDeleteFamily(t *testing.T) {
	t.Run("cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		activity := NewActivityService(db)
		svc := NewFamilyService(db, notifier, activity)
		goalSvc := NewFamilyGoalService(db, notifier, activity)
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		testutil.CreateTestFamilyBudget(t, db, family.ID, creator.ID)
		goal := testutil.CreateTestFamilyGoal(t, db, family.ID, creator.ID, 100000)
		_, _, err := goalSvc.Contribute(creator.ID, family.ID, goal.ID, 2500)
		testutil.AssertNoError(t, err)

		err = svc.DeleteFamily(creator.ID, family.ID)
		testutil.AssertNoError(t, err)

		for table, model := range map[string]interface{}{
			"families":       &models.Family{},
			"family_members": &models.FamilyMember{},
			"family_budgets": &models.FamilyBudget{},
			"family_goals":   &models.FamilyGoal{},
		} {
			var count int64
			db.Model(model).Count(&count)
			if count != 0 {
				t.Errorf("expected %s to be empty, got %d rows", table, count)
			}
		}
		var contributions int64
		db.Model(&models.GoalContribution{}).Count(&contributions)
		if contributions != 0 {
			t.Errorf("expected contributions to be deleted, got %d", contributions)
		}

		if !notifier.hasFamilyEvent(family.ID, realtime.EventDeleted) {
			t.Error("expected family-deleted broadcast")
		}
		if len(notifier.closed) != 1 || notifier.closed[0] != family.ID {
			t.Errorf("expected family channel closed, got %v", notifier.closed)
		}
	})

	t.Run("not_creator", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestMember(t, db, family.ID, user.ID, models.PermissionViewEdit)

		err := svc.DeleteFamily(user.ID, family.ID)
		testutil.AssertAppError(t, err, "CREATOR_ONLY")

		var count int64
		db.Model(&models.Family{}).Count(&count)
		if count != 1 {
			t.Error("expected family to survive a forbidden delete")
		}
	})
}

func TestSetTransactionSharing(t *testing.T) {
	t.Run("toggle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := newRecordingNotifier()
		svc := NewFamilyService(db, notifier, NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		user := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestMember(t, db, family.ID, user.ID, models.PermissionViewOnly)

		_, err := svc.SetTransactionSharing(user.ID, family.ID, true)
		testutil.AssertNoError(t, err)

		var stored models.FamilyMember
		db.First(&stored, "id = ?", member.ID)
		if !stored.IsSharingTransactions {
			t.Error("expected sharing flag to be set")
		}
		if !notifier.hasFamilyEvent(family.ID, realtime.EventMemberUpdated) {
			t.Error("expected member-updated broadcast")
		}

		_, err = svc.SetTransactionSharing(user.ID, family.ID, false)
		testutil.AssertNoError(t, err)
		db.First(&stored, "id = ?", member.ID)
		if stored.IsSharingTransactions {
			t.Error("expected sharing flag to be cleared")
		}
	})
}

func TestFamilyReads(t *testing.T) {
	t.Run("my_families_and_requests", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		applicant := testutil.CreateTestUser(t, db)
		testutil.CreateTestPendingMember(t, db, family.ID, applicant.ID)

		families, err := svc.GetMyFamilies(creator.ID)
		testutil.AssertNoError(t, err)
		if len(families) != 1 {
			t.Fatalf("expected 1 family, got %d", len(families))
		}
		// Pending members never appear in the roster.
		if len(families[0].Members) != 1 {
			t.Errorf("expected 1 accepted member, got %d", len(families[0].Members))
		}

		pending, err := svc.GetPendingRequests(creator.ID)
		testutil.AssertNoError(t, err)
		if len(pending) != 1 {
			t.Errorf("expected 1 pending request, got %d", len(pending))
		}

		mine, err := svc.GetMyJoinRequests(applicant.ID)
		testutil.AssertNoError(t, err)
		if len(mine) != 1 {
			t.Errorf("expected 1 join request, got %d", len(mine))
		}
	})

	t.Run("is_accepted_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFamilyService(db, newRecordingNotifier(), NewActivityService(db))
		creator := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, creator.ID)
		applicant := testutil.CreateTestUser(t, db)
		testutil.CreateTestPendingMember(t, db, family.ID, applicant.ID)

		if !svc.IsAcceptedMember(creator.ID, family.ID) {
			t.Error("expected creator to be an accepted member")
		}
		if svc.IsAcceptedMember(applicant.ID, family.ID) {
			t.Error("expected pending applicant to not be accepted")
		}
	})
}
