package state

// UserInfo is the session returned by login and registration.
type UserInfo struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

type UserLoginState struct {
	Loading  bool
	UserInfo *UserInfo
	Error    string
}

func ReduceUserLogin(s UserLoginState, a Action) UserLoginState {
	switch a.Type {
	case UserLoginRequest:
		return UserLoginState{Loading: true}
	case UserLoginSuccess:
		info, _ := a.Payload.(UserInfo)
		return UserLoginState{UserInfo: &info}
	case UserLoginFail:
		return UserLoginState{Error: a.Error}
	case UserLogout:
		return UserLoginState{}
	}
	return s
}
