package fetch

import "time"

// Wire types for the v2 recent-search endpoint. Only the fields we read.

type searchResponse struct {
	Data     []apiTweet     `json:"data"`
	Includes searchIncludes `json:"includes"`
	Meta     searchMeta     `json:"meta"`
	Errors   []apiError     `json:"errors,omitempty"`
}

type searchIncludes struct {
	Users  []apiUser  `json:"users"`
	Tweets []apiTweet `json:"tweets"`
}

type searchMeta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type apiTweet struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	AuthorID         string            `json:"author_id"`
	CreatedAt        time.Time         `json:"created_at"`
	Entities         *tweetEntities    `json:"entities,omitempty"`
	ReferencedTweets []referencedTweet `json:"referenced_tweets,omitempty"`
	PublicMetrics    tweetMetrics      `json:"public_metrics"`
}

type tweetEntities struct {
	Mentions []struct {
		Username string `json:"username"`
	} `json:"mentions"`
	Hashtags []struct {
		Tag string `json:"tag"`
	} `json:"hashtags"`
}

type referencedTweet struct {
	Type string `json:"type"` // "retweeted", "quoted", "replied_to"
	ID   string `json:"id"`
}

type tweetMetrics struct {
	RetweetCount int `json:"retweet_count"`
}

type apiUser struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	Description   string      `json:"description"`
	PublicMetrics userMetrics `json:"public_metrics"`
}

type userMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
}
