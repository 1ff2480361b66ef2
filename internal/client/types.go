package client

// Chat is one persistent conversation thread.
type Chat struct {
	ID       string `json:"id"`
	ChatID   int64  `json:"chatId"`
	ChatCode string `json:"chatCode"`
	Title    string `json:"title"`
}

// Message is one message record inside a conversation.
type Message struct {
	MessageID        int64  `json:"messageId"`
	CreationTime     int64  `json:"creationTime"`
	ID               string `json:"id"`
	Text             string `json:"text"`
	State            string `json:"state"`
	Author           string `json:"author"`
	ContentType      string `json:"contentType"`
	SourceType       string `json:"sourceType"`
	ClientNonce      string `json:"clientNonce"`
	MessageCode      string `json:"messageCode"`
	MessageStateText string `json:"messageStateText"`
}

// BotInfo is a bot profile record.
type BotInfo struct {
	ID          string   `json:"id"`
	BotID       int64    `json:"botId"`
	Handle      string   `json:"handle"`
	DisplayName string   `json:"displayName"`
	Model       string   `json:"model"`
	Description string   `json:"description"`
	PoweredBy   string   `json:"poweredBy"`
	Tags        []string `json:"translatedBotTags"`
	Picture     struct {
		URL string `json:"url"`
	} `json:"picture"`
	MessagePointLimit struct {
		DisplayMessagePointPrice int64 `json:"displayMessagePointPrice"`
	} `json:"messagePointLimit"`
	Introduction              string `json:"introduction"`
	IsCreatedByPoeUserAccount bool   `json:"isCreatedByPoeUserAccount"`
}

// UserInfo is a user profile record.
type UserInfo struct {
	ID                    string `json:"id"`
	UID                   int64  `json:"uid"`
	Handle                string `json:"handle"`
	NullableHandle        string `json:"nullableHandle"`
	FullName              string `json:"fullName"`
	FollowerCount         int64  `json:"followerCount"`
	ProfilePhotoURL       string `json:"profilePhotoUrl"`
	MediumProfilePhotoURL string `json:"mediumProfilePhotoUrl"`
}

// HandleOrNullable returns whichever handle field the backend populated;
// search results use nullableHandle, profile pages use handle.
func (u *UserInfo) HandleOrNullable() string {
	if u.Handle != "" {
		return u.Handle
	}
	return u.NullableHandle
}

// Entity is one search result: exactly one of Bot or User is set.
type Entity struct {
	Bot  *BotInfo
	User *UserInfo
}

// Settings is the viewer's account settings.
type Settings struct {
	UID        int64 `json:"uid"`
	DefaultBot struct {
		ID          string `json:"id"`
		BotID       int64  `json:"botId"`
		DisplayName string `json:"displayName"`
	} `json:"defaultBot"`
	MessagePointInfo struct {
		MessagePointResetTime      int64 `json:"messagePointResetTime"`
		MessagePointBalance        int64 `json:"messagePointBalance"`
		TotalMessagePointAllotment int64 `json:"totalMessagePointAllotment"`
	} `json:"messagePointInfo"`
	PrimaryEmail          string `json:"primaryEmail"`
	HasActiveSubscription bool   `json:"hasActiveSubscription"`
	ViewerCountryCode     string `json:"viewerCountryCode"`
	HasUnreadMessage      bool   `json:"hasUnreadMessage"`
}

// PointBalance returns the remaining message point balance.
func (s *Settings) PointBalance() int64 {
	return s.MessagePointInfo.MessagePointBalance
}

// ChannelDescriptor holds the push-subscription coordinates returned by the
// settings endpoint. Immutable once read; a fresh one is fetched per
// (re)connect.
type ChannelDescriptor struct {
	MinSeq          string `json:"minSeq"`
	Channel         string `json:"channel"`
	ChannelHash     string `json:"channelHash"`
	BoxName         string `json:"boxName"`
	BaseHost        string `json:"baseHost"`
	TargetURL       string `json:"targetUrl"`
	EnableWebsocket bool   `json:"enableWebsocket"`
}
