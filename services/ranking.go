package services

import (
	"strconv"

	"blogapp/global"

	"github.com/go-redis/redis"
)

const rankKey = "rank:article:likes"

func likeKey(articleID string) string {
	return "article:" + articleID + ":likes"
}

// RankedArticle is one entry of the like leaderboard.
type RankedArticle struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Score int64  `json:"score"`
	Rank  int    `json:"rank"`
}

// RecordArticleLike mirrors a committed like count into Redis: the
// per-article count and the article's leaderboard score. Articles without
// likes leave the leaderboard. It is a no-op when Redis is not configured.
func RecordArticleLike(articleID string, likes int) error {
	if global.RedisDB == nil {
		return nil
	}
	pipe := global.RedisDB.TxPipeline()
	pipe.Set(likeKey(articleID), likes, 0)
	if likes > 0 {
		pipe.ZAdd(rankKey, redis.Z{Score: float64(likes), Member: articleID})
	} else {
		pipe.ZRem(rankKey, articleID)
	}
	_, err := pipe.Exec()
	return err
}

// ForgetArticle drops a deleted article from the Redis mirrors.
func ForgetArticle(articleID string) error {
	if global.RedisDB == nil {
		return nil
	}
	pipe := global.RedisDB.TxPipeline()
	pipe.Del(likeKey(articleID))
	pipe.ZRem(rankKey, articleID)
	_, err := pipe.Exec()
	return err
}

// CachedArticleLikes returns the mirrored like count of an article.
// ok is false on a cache miss or when Redis is not configured.
func CachedArticleLikes(articleID string) (likes int, ok bool, err error) {
	if global.RedisDB == nil {
		return 0, false, nil
	}
	val, err := global.RedisDB.Get(likeKey(articleID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	likes, err = strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return likes, true, nil
}

// TopArticles returns the top n articles of the like leaderboard.
func TopArticles(n int) ([]RankedArticle, error) {
	if global.RedisDB == nil || n <= 0 {
		return []RankedArticle{}, nil
	}
	zres, err := global.RedisDB.ZRevRangeWithScores(rankKey, 0, int64(n-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return []RankedArticle{}, nil
		}
		return nil, err
	}

	list := make([]RankedArticle, 0, len(zres))
	for idx, z := range zres {
		memberStr, _ := z.Member.(string)
		list = append(list, RankedArticle{ID: memberStr, Score: int64(z.Score), Rank: idx + 1})
	}
	return list, nil
}
