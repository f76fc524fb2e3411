package services

import "blogapp/models"

// AssertOwner allows a mutation only when actingUserID authored the article.
// action names the denied operation in the error, e.g. "edit" or "delete".
func AssertOwner(article *models.Article, actingUserID, action string) error {
	if article.Author != "" && article.Author == actingUserID {
		return nil
	}
	return newError(ErrForbidden, "You can only "+action+" your own articles")
}
