// data.go
//
// A versioned paper submission and peer-review workflow service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of paperdb.
// paperdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// paperdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with paperdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package helpers

import (
	"context"
	"testing"

	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
)

// CreateTestUser registers a user with the given roles as a system operation
func CreateTestUser(t *testing.T, engine *services.Engine, userID string, roles ...models.Role) models.User {
	t.Helper()
	user, err := engine.RegisterUser(context.Background(), models.User{
		UserID:      userID,
		Email:       userID + "@example.org",
		DisplayName: userID,
	}, roles, "")
	if err != nil {
		t.Fatalf("Failed to register user %s: %v", userID, err)
	}
	return *user
}

// CreateTestPaper creates a paper for the author and submits one version per title
func CreateTestPaper(t *testing.T, engine *services.Engine, authorID, abstract string, titles ...string) uint64 {
	t.Helper()
	ctx := context.Background()
	paper, err := engine.CreatePaper(ctx, authorID)
	if err != nil {
		t.Fatalf("Failed to create paper: %v", err)
	}
	for _, title := range titles {
		if _, err := engine.SubmitPaperVersion(ctx, paper.PaperID, title, abstract, "s3://papers/"+title, authorID); err != nil {
			t.Fatalf("Failed to submit version %q: %v", title, err)
		}
	}
	return paper.PaperID
}

// CompleteTestReview assigns the reviewer to a version and records a score
func CompleteTestReview(t *testing.T, engine *services.Engine, paperID, versionNumber uint64, reviewerID, adminID string, score int) models.Review {
	t.Helper()
	ctx := context.Background()
	review, err := engine.AssignReviewer(ctx, paperID, versionNumber, reviewerID, adminID)
	if err != nil {
		t.Fatalf("Failed to assign reviewer: %v", err)
	}
	done, err := engine.RecordReviewOutcome(ctx, review.ReviewID, nil, &score, reviewerID)
	if err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}
	return *done
}
