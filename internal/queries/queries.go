// Package queries holds the operation catalogue of the backend's
// operation-tagged API: operation names, their fixed persisted-query hashes,
// and the subscription topics the push channel is registered for.
//
// The backend is unversioned; these constants were lifted from the served
// web client and change whenever it is redeployed.
package queries

// API paths for operation calls.
const (
	PathGql       = "gql_POST"
	PathGqlUpload = "gql_upload_POST"
)

// Operation is a logical API operation. Its string value is sent as the
// queryName field of the request payload.
type Operation string

const (
	SubscriptionsMutation         Operation = "SubscriptionsMutation"
	SendMessageMutation           Operation = "SendMessageMutation"
	HandleBotLandingPageQuery     Operation = "HandleBotLandingPageQuery"
	HandleProfilePageQuery        Operation = "HandleProfilePageQuery"
	MessageInfoPageQuery          Operation = "MessageInfoPageQuery"
	ShareMessagesMutation         Operation = "messageSharing_shareMessagesMutation_Mutation"
	DeleteMessagesMutation        Operation = "MessageDeleteConfirmationModal_deleteMessageMutation_Mutation"
	DeleteUserMessagesMutation    Operation = "SettingsDeleteAllMessagesButton_deleteUserMessagesMutation_Mutation"
	SetDefaultBotMutation         Operation = "SettingsDefaultBotSectionMutation"
	SetDefaultPointLimitMutation  Operation = "SettingsDefaultMessagePointLimitModal_SetAllChatDefaultMessagePointPriceThreshold_Mutation"
	ContinueChatFromShareMutation Operation = "ContinueChatCTAButton_continueChatFromPoeShare_Mutation"
	ChatSetTitleMutation          Operation = "ChatSettingsModal_ChatSetTitle_Mutation"
	ChatSetContextOptimization    Operation = "ChatSettingsModal_ChatSetContextOptimization_Mutation"
	DeleteChatMutation            Operation = "useDeleteChat_deleteChat_Mutation"
	SearchResultsPaginationQuery  Operation = "SearchResultsListPaginationQuery"
	ExploreBotsIndexPageQuery     Operation = "ExploreBotsIndexPageQuery"
	ExploreBotsPaginationQuery    Operation = "ExploreBotsListPaginationQuery"
	ChatHistoryPaginationQuery    Operation = "ChatHistoryListPaginationQuery"
	SetFollowUserMutation         Operation = "UserFollowStateButton_poeUserSetFollow_Mutation"
	SettingsPageQuery             Operation = "settingsPageQuery"
	ChatPageQuery                 Operation = "ChatPageQuery"
	RegenerateMessageMutation     Operation = "regenerateMessageMutation"
	CancelActiveJobsMutation      Operation = "cancelViewerActiveJobs_cancelViewerActiveJobs_Mutation"
	SendChatBreakMutation         Operation = "sendChatBreakMutation"
	SharePreviewFromMessage       Operation = "useSharePreviewFromMessage_Mutation"
	SetMessagePointPriceThreshold Operation = "CostThresholdUpdateChatModal_ChatSetMessagePointPriceThreshold_Mutation"
)

var hashes = map[Operation]string{
	SubscriptionsMutation:         "5a7bfc9ce3b4e456cd05a537cfa27096f08417593b8d9b53f57587f3b7b63e99",
	SendMessageMutation:           "f1486efc974a214dac6586c46b81bf631a95e58eab1d27b215f622859d74a23e",
	HandleBotLandingPageQuery:     "2ec8856116b8c2cb587e9a05e60df21a751694b2ff06d67dfe0c3d0efaf5f6a2",
	HandleProfilePageQuery:        "ed55a4dd9ace8dfd13a7fa37ed009ac1b93c02f7e18eb42af81944ca76e8e45b",
	MessageInfoPageQuery:          "575cfeca537e4cc74e8ecc1fca0093e6ae988dc26b3cc66bbbb955b0880cde33",
	ShareMessagesMutation:         "652521d75d063d7665de9d96f690b61edcc24640f8428112b9490ebd307b1896",
	DeleteMessagesMutation:        "9f267eca67c714faa43fe19ec824ce0df5df504be8e7989f77bc748507cecaa5",
	DeleteUserMessagesMutation:    "3f60d527c3f636f308b3a26fc3a0012be34ea1a201e47a774b4513d8a1ba8912",
	SetDefaultBotMutation:         "4084604e8741af8650ac6b4236cdfa13c91a70cf1c63ad8a368706a386d0887e",
	SetDefaultPointLimitMutation:  "b3843325a4abf30891f1f99c1d87d9ca43761ce989be92fe93a986c55dedc4b6",
	ContinueChatFromShareMutation: "8b7bbb788463708e87ea979a383ddf6cbbb8818305add8b30c275a13ce9c7a95",
	ChatSetTitleMutation:          "3622c78363768bac6272765ffc507cd0416218917b3668ed39cced221de94c0f",
	ChatSetContextOptimization:    "1e314e6829565b88fff37dfcbaab95dabe5338df7e231f7a2a2cb420545645b6",
	DeleteChatMutation:            "5df4cb75c0c06e086b8949890b1871a9f8b9e431a930d5894d08ca86e9260a18",
	SearchResultsPaginationQuery:  "a3db2f281540813c096123652d790d56c652fce0d3fca1ad234c81134d5de8f9",
	ExploreBotsIndexPageQuery:     "b8ca306feb56f998c46c23208109c4640d410616eb52f48444e5c54bac825438",
	ExploreBotsPaginationQuery:    "b24b2f2f6da147b3345eec1a433ed17b6e1332df97dea47622868f41078a40cc",
	ChatHistoryPaginationQuery:    "6ce01455b0201e625489da90c65f87a2809d212ea41ab6e39412b6913990e81f",
	SetFollowUserMutation:         "8580c72320403ce5c3a00e88c2d52a8a54126a1b941af67662a1b5bfdce536ca",
	SettingsPageQuery:             "19f7f75aa4cc48a0a10c85f5be0190885659aeeb535507f6fa7e26485a069902",
	ChatPageQuery:                 "82ea9ced7cb46a25ef787e118a00d27c6d69cec3791e0317c8f335b064d211a7",
	RegenerateMessageMutation:     "0874efa8afdd12aedf1a4d14ccfd3a809d393d82c7dba12c23a0e3e0970ada09",
	CancelActiveJobsMutation:      "bec4c5fb9ea395932da3174c38da893ffaf7ab142130ef1f0f796526051a80de",
	SendChatBreakMutation:         "52035c9f0323132306b9cd36dd800edd3bc1418fc0d5cc1f6d1ed418155eaa8b",
	SharePreviewFromMessage:       "56d6f245645427d368357d32dd444af37edaca497aa15219364864d0de495d41",
	SetMessagePointPriceThreshold: "8e36131a9013790c899523f76def20fe81da7cc69650b37ea076fd453b685682",
}

// Hash returns the persisted-query hash sent under extensions.hash.
func (o Operation) Hash() string { return hashes[o] }

type subscription struct {
	SubscriptionName string  `json:"subscriptionName"`
	Query            *string `json:"query"`
	QueryHash        string  `json:"queryHash"`
}

var subscriptionTopics = []subscription{
	{SubscriptionName: "messageAdded", QueryHash: "993dcce616ce18788af3cce85e31437abf8fd64b14a3daaf3ae2f0e02d35aa03"},
	{SubscriptionName: "messageCancelled", QueryHash: "14647e90e5960ec81fa83ae53d270462c3743199fbb6c4f26f40f4c83116d2ff"},
	{SubscriptionName: "messageDeleted", QueryHash: "91f1ea046d2f3e21dabb3131898ec3c597cb879aa270ad780e8fdd687cde02a3"},
	{SubscriptionName: "messageRead", QueryHash: "8c80ca00f63ad411ba7de0f1fa064490ed5f438d4a0e60fd9caa080b11af9495"},
	{SubscriptionName: "messageCreated", QueryHash: "47ee9830e0383f002451144765226c9be750d6c2135e648bced2ca7efc9d8a67"},
	{SubscriptionName: "messageStateUpdated", QueryHash: "117a49c685b4343e7e50b097b10a13b9555fedd61d3bf4030c450dccbeef5676"},
	{SubscriptionName: "messageAttachmentAdded", QueryHash: "65798bb2f409d9457fc84698479f3f04186d47558c3d7e75b3223b6799b6788d"},
	{SubscriptionName: "messageFollowupActionAdded", QueryHash: "d2e770beae7c217c77db4918ed93e848ae77df668603bc84146c161db149a2c7"},
	{SubscriptionName: "messageMetadataUpdated", QueryHash: "71c247d997d73fb0911089c1a77d5d8b8503289bc3701f9fb93c9b13df95aaa6"},
	{SubscriptionName: "messageTextUpdated", QueryHash: "800eea48edc9c3a81aece34f5f1ff40dc8daa71dead9aec28f2b55523fe61231"},
	{SubscriptionName: "jobStarted", QueryHash: "17099b40b42eb9f7e32323aa6badc9283b75a467bc8bc40ff5069c37d91856f6"},
	{SubscriptionName: "jobUpdated", QueryHash: "e8e492bfaf5041985055d07ad679e46b9a6440ab89424711da8818ae01d1a1f1"},
	{SubscriptionName: "viewerStateUpdated", QueryHash: "3b2014dba11e57e99faa68b6b6c4956f3e982556f0cf832d728534f4319b92c7"},
	{SubscriptionName: "unreadChatsUpdated", QueryHash: "5b4853e53ff735ae87413a9de0bce15b3c9ba19102bf03ff6ae63ff1f0f8f1cd"},
	{SubscriptionName: "chatTitleUpdated", QueryHash: "ee062b1f269ecd02ea4c2a3f1e4b2f222f7574c43634a2da4ebeb616d8647e06"},
	{SubscriptionName: "knowledgeSourceUpdated", QueryHash: "7de63f89277bcf54f2323008850573809595dcef687f26a78561910cfd4f6c37"},
	{SubscriptionName: "messagePointLimitUpdated", QueryHash: "ed3857668953d6e8849c1562f3039df16c12ffddaaac1db930b91108775ee16d"},
	{SubscriptionName: "chatMemberAdded", QueryHash: "21ef45e20cc8120c31a320c3104efe659eadf37d49249802eff7b15d883b917b"},
	{SubscriptionName: "chatSettingsUpdated", QueryHash: "3b370c05478959224e3dbf9112d1e0490c22e17ffb4befd9276fc62e196b0f5b"},
	{SubscriptionName: "chatModalStateChanged", QueryHash: "f641bc122ac6a31d466c92f6c724343688c2f679963b7769cb07ec346096bfe7"},
}

// SubscriptionsData builds the variables for SubscriptionsMutation: the fixed
// list of push topics every channel is subscribed to.
func SubscriptionsData() map[string]any {
	return map[string]any{"subscriptions": subscriptionTopics}
}
